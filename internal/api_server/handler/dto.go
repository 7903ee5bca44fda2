package handler

// CreateEntryRequest represents a request to record a new entry
type CreateEntryRequest struct {
	Name         string `json:"name" binding:"required"`
	Organization string `json:"organization,omitempty"`
	Amount       int64  `json:"amount" binding:"min=0"`
	Attendance   string `json:"attendance,omitempty"`
	ReturnStatus string `json:"return_status,omitempty"`
}

// UpdateEntryRequest represents a request to update an existing entry
type UpdateEntryRequest struct {
	Name         string `json:"name" binding:"required"`
	Organization string `json:"organization,omitempty"`
	Amount       int64  `json:"amount" binding:"min=0"`
	Attendance   string `json:"attendance" binding:"required,oneof=FUNERAL CONDOLENCE_VISIT ABSENT"`
	ReturnStatus string `json:"return_status" binding:"required,oneof=PENDING PARTIAL_RETURNED COMPLETED NOT_REQUIRED"`
}

// EntryResponse represents an entry in API responses
type EntryResponse struct {
	ID           string `json:"id"`
	KoudenID     string `json:"kouden_id"`
	Name         string `json:"name"`
	Organization string `json:"organization,omitempty"`
	Amount       int64  `json:"amount"`
	Attendance   string `json:"attendance"`
	ReturnStatus string `json:"return_status"`
	IsDuplicate  bool   `json:"is_duplicate"`
	Version      int    `json:"version"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// AllocateOfferingRequest represents a request to attribute offering value to an entry
type AllocateOfferingRequest struct {
	Description string `json:"description,omitempty"`
	Amount      int64  `json:"amount" binding:"min=0"`
}

// AllocationResponse represents an offering allocation in API responses
type AllocationResponse struct {
	ID          string `json:"id"`
	EntryID     string `json:"entry_id"`
	Description string `json:"description,omitempty"`
	Amount      int64  `json:"amount"`
	CreatedAt   string `json:"created_at"`
}

// ReservationRequest represents a consultation booking request
type ReservationRequest struct {
	Summary string `json:"summary"`
	Email   string `json:"email"`
	Notes   string `json:"notes,omitempty"`
	Start   string `json:"start"` // RFC 3339
	End     string `json:"end"`   // RFC 3339
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=20" binding:"min=1,max=100"`
}
