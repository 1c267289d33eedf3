package gateway

// Request/response shapes for the processor's REST API. Field names follow
// the processor's JSON contract, amounts are decimal reais on the wire.

type CustomerRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone,omitempty"`
	ExternalReference string `json:"externalReference,omitempty"`
}

type Customer struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	ExternalReference string `json:"externalReference"`
}

type ChargeRequest struct {
	CustomerID        string  `json:"customer"`
	BillingType       string  `json:"billingType"` // BOLETO, CREDIT_CARD, PIX, UNDEFINED
	Value             float64 `json:"value"`
	DueDate           string  `json:"dueDate"` // YYYY-MM-DD
	Description       string  `json:"description,omitempty"`
	ExternalReference string  `json:"externalReference,omitempty"`
}

type Charge struct {
	ID                string  `json:"id"`
	Status            string  `json:"status"`
	InvoiceURL        string  `json:"invoiceUrl"`
	Value             float64 `json:"value"`
	ExternalReference string  `json:"externalReference"`
}

type SubscriptionRequest struct {
	CustomerID        string  `json:"customer"`
	BillingType       string  `json:"billingType"`
	Value             float64 `json:"value"`
	NextDueDate       string  `json:"nextDueDate"`
	Cycle             string  `json:"cycle"` // MONTHLY, YEARLY
	Description       string  `json:"description,omitempty"`
	ExternalReference string  `json:"externalReference,omitempty"`
}

type GatewaySubscription struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	NextDueDate string  `json:"nextDueDate"`
	Value       float64 `json:"value"`
}

type apiError struct {
	Errors []struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"errors"`
}
