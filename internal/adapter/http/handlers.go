package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/simaogato/rewardnetwork-backend/internal/domain"
	"github.com/simaogato/rewardnetwork-backend/internal/usecase/reward"
	"github.com/simaogato/rewardnetwork-backend/internal/usecase/summary"
)

const dateLayout = "2006-01-02"

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// Handler holds the use cases served over HTTP
type Handler struct {
	RewardService  *reward.RewardService
	SummaryService *summary.SummaryService
	Logger         *slog.Logger
}

// NewHandler creates a new Handler
func NewHandler(rewardService *reward.RewardService, summaryService *summary.SummaryService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		RewardService:  rewardService,
		SummaryService: summaryService,
		Logger:         logger,
	}
}

// RewardAccountFor rewards the account charged for a dining.
// POST /api/rewards
func (h *Handler) RewardAccountFor(w http.ResponseWriter, r *http.Request) {
	var req RewardRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	amount, err := domain.ParseMonetaryAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount (use a decimal such as 100.00)", err)
		return
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		date, err = time.Parse(dateLayout, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
	}

	dining, err := domain.NewDining(amount, req.CreditCardNumber, req.MerchantNumber, date)
	if err != nil {
		h.writeDomainError(r.Context(), w, err)
		return
	}

	confirmation, err := h.RewardService.RewardAccountFor(r.Context(), dining)
	if err != nil {
		h.writeDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toConfirmationDTO(confirmation))
}

// GetReward returns a recorded reward.
// GET /api/rewards/{confirmationNumber}
func (h *Handler) GetReward(w http.ResponseWriter, r *http.Request) {
	record, err := h.SummaryService.GetReward(r.Context(), chi.URLParam(r, "confirmationNumber"))
	if err != nil {
		h.writeDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, RewardRecordDTO{
		ConfirmationNumber: record.ConfirmationNumber,
		AccountNumber:      record.AccountNumber,
		RewardAmount:       record.RewardAmount.String(),
		RewardDate:         record.RewardDate.UTC().Format(time.RFC3339),
		MerchantNumber:     record.MerchantNumber,
		DiningAmount:       record.DiningAmount.String(),
		DiningDate:         record.DiningDate.UTC().Format(dateLayout),
	})
}

// GetAccountSummary returns an account's beneficiary savings.
// GET /api/accounts/{creditCard}/summary
func (h *Handler) GetAccountSummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.SummaryService.GetAccountSummary(r.Context(), chi.URLParam(r, "creditCard"))
	if err != nil {
		h.writeDomainError(r.Context(), w, err)
		return
	}

	beneficiaries := make([]BeneficiaryDTO, 0, len(result.Beneficiaries))
	for _, b := range result.Beneficiaries {
		beneficiaries = append(beneficiaries, BeneficiaryDTO{
			Name:       b.Name,
			Allocation: b.Allocation.String(),
			Savings:    b.Savings.String(),
		})
	}
	writeJSON(w, http.StatusOK, AccountSummaryDTO{
		AccountNumber: result.AccountNumber,
		Name:          result.Name,
		Beneficiaries: beneficiaries,
		TotalSavings:  result.TotalSavings.String(),
	})
}

// Health reports liveness.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func toConfirmationDTO(confirmation *domain.RewardConfirmation) RewardConfirmationDTO {
	contribution := confirmation.Contribution
	distributions := make([]DistributionDTO, 0, len(contribution.Distributions))
	for _, d := range contribution.Distributions {
		distributions = append(distributions, DistributionDTO{
			BeneficiaryName: d.BeneficiaryName,
			Amount:          d.Amount.String(),
			Percentage:      d.Percentage.String(),
			TotalSavings:    d.TotalSavings.String(),
		})
	}
	return RewardConfirmationDTO{
		ConfirmationNumber: confirmation.ConfirmationNumber,
		AccountNumber:      contribution.AccountNumber,
		Amount:             contribution.Amount.String(),
		Distributions:      distributions,
	}
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrConcurrentModification):
		return http.StatusConflict
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsInvalidInput(err):
		return http.StatusBadRequest
	case domain.IsInvalidState(err):
		return http.StatusUnprocessableEntity
	case domain.IsStorageFailure(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Logger.ErrorContext(ctx, "request failed", slog.String("error", err.Error()))
	}
	writeError(w, status, http.StatusText(status), err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
