package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/rewardnetwork-backend/internal/domain"
	"github.com/simaogato/rewardnetwork-backend/internal/usecase/reward"
	"github.com/simaogato/rewardnetwork-backend/internal/usecase/summary"
)

const dateLayout = "2006-01-02"

var _ RewardNetworkServer = (*Server)(nil)

// Server implements the RewardNetwork gRPC server
type Server struct {
	RewardService  *reward.RewardService
	SummaryService *summary.SummaryService
}

// NewServer creates a new gRPC server instance
func NewServer(
	rewardService *reward.RewardService,
	summaryService *summary.SummaryService,
) *Server {
	return &Server{
		RewardService:  rewardService,
		SummaryService: summaryService,
	}
}

// RewardAccountFor handles the RewardAccountFor RPC
// Request fields: amount ("100.00"), creditCardNumber, merchantNumber, date (optional, YYYY-MM-DD)
func (s *Server) RewardAccountFor(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	// Parse amount from string to MonetaryAmount
	amount, err := domain.ParseMonetaryAmount(stringField(fields, "amount"))
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid amount format: %v", err)
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := stringField(fields, "date"); raw != "" {
		date, err = time.Parse(dateLayout, raw)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid date format: %v", err)
		}
	}

	dining, err := domain.NewDining(amount, stringField(fields, "creditCardNumber"), stringField(fields, "merchantNumber"), date)
	if err != nil {
		return nil, mapError(err)
	}

	// Call usecase service
	confirmation, err := s.RewardService.RewardAccountFor(ctx, dining)
	if err != nil {
		return nil, mapError(err)
	}

	// Build response
	return toStruct(confirmationFields(confirmation))
}

// GetReward handles the GetReward RPC
// Request fields: confirmationNumber
func (s *Server) GetReward(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	record, err := s.SummaryService.GetReward(ctx, stringField(req.GetFields(), "confirmationNumber"))
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(map[string]any{
		"confirmationNumber": record.ConfirmationNumber,
		"accountNumber":      record.AccountNumber,
		"rewardAmount":       record.RewardAmount.String(),
		"rewardDate":         record.RewardDate.UTC().Format(time.RFC3339),
		"merchantNumber":     record.MerchantNumber,
		"diningAmount":       record.DiningAmount.String(),
		"diningDate":         record.DiningDate.UTC().Format(dateLayout),
	})
}

// GetAccountSummary handles the GetAccountSummary RPC
// Request fields: creditCardNumber
func (s *Server) GetAccountSummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	result, err := s.SummaryService.GetAccountSummary(ctx, stringField(req.GetFields(), "creditCardNumber"))
	if err != nil {
		return nil, mapError(err)
	}

	beneficiaries := make([]any, 0, len(result.Beneficiaries))
	for _, b := range result.Beneficiaries {
		beneficiaries = append(beneficiaries, map[string]any{
			"name":       b.Name,
			"allocation": b.Allocation.String(),
			"savings":    b.Savings.String(),
		})
	}

	return toStruct(map[string]any{
		"accountNumber": result.AccountNumber,
		"name":          result.Name,
		"beneficiaries": beneficiaries,
		"totalSavings":  result.TotalSavings.String(),
	})
}

func confirmationFields(confirmation *domain.RewardConfirmation) map[string]any {
	contribution := confirmation.Contribution
	distributions := make([]any, 0, len(contribution.Distributions))
	for _, d := range contribution.Distributions {
		distributions = append(distributions, map[string]any{
			"beneficiaryName": d.BeneficiaryName,
			"amount":          d.Amount.String(),
			"percentage":      d.Percentage.String(),
			"totalSavings":    d.TotalSavings.String(),
		})
	}
	return map[string]any{
		"confirmationNumber": confirmation.ConfirmationNumber,
		"accountNumber":      contribution.AccountNumber,
		"amount":             contribution.Amount.String(),
		"distributions":      distributions,
	}
}

func stringField(fields map[string]*structpb.Value, key string) string {
	return strings.TrimSpace(fields[key].GetStringValue())
}

func toStruct(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

// mapError maps domain errors to gRPC status codes
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrConcurrentModification):
		return status.Error(codes.Aborted, err.Error())
	case domain.IsNotFound(err):
		return status.Error(codes.NotFound, err.Error())
	case domain.IsInvalidInput(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case domain.IsInvalidState(err):
		return status.Error(codes.FailedPrecondition, err.Error())
	case domain.IsStorageFailure(err):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
