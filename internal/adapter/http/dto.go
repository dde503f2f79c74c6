package http

// RewardRequest is the body of POST /api/rewards
type RewardRequest struct {
	Amount           string `json:"amount" validate:"required,notblank"` // "100.00"
	CreditCardNumber string `json:"creditCardNumber" validate:"required,notblank"`
	MerchantNumber   string `json:"merchantNumber" validate:"required,notblank"`
	Date             string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"` // Defaults to today
}

// DistributionDTO is one beneficiary's share of a contribution
type DistributionDTO struct {
	BeneficiaryName string `json:"beneficiaryName"`
	Amount          string `json:"amount"`
	Percentage      string `json:"percentage"`
	TotalSavings    string `json:"totalSavings"`
}

// RewardConfirmationDTO is returned after a successful reward
type RewardConfirmationDTO struct {
	ConfirmationNumber string            `json:"confirmationNumber"`
	AccountNumber      string            `json:"accountNumber"`
	Amount             string            `json:"amount"`
	Distributions      []DistributionDTO `json:"distributions"`
}

// RewardRecordDTO is a recorded reward
type RewardRecordDTO struct {
	ConfirmationNumber string `json:"confirmationNumber"`
	AccountNumber      string `json:"accountNumber"`
	RewardAmount       string `json:"rewardAmount"`
	RewardDate         string `json:"rewardDate"`
	MerchantNumber     string `json:"merchantNumber"`
	DiningAmount       string `json:"diningAmount"`
	DiningDate         string `json:"diningDate"`
}

// BeneficiaryDTO is a beneficiary line of an account summary
type BeneficiaryDTO struct {
	Name       string `json:"name"`
	Allocation string `json:"allocation"`
	Savings    string `json:"savings"`
}

// AccountSummaryDTO is returned by GET /api/accounts/{creditCard}/summary
type AccountSummaryDTO struct {
	AccountNumber string           `json:"accountNumber"`
	Name          string           `json:"name"`
	Beneficiaries []BeneficiaryDTO `json:"beneficiaries"`
	TotalSavings  string           `json:"totalSavings"`
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
