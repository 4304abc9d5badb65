// Package crm contiene DTOs de los recursos de negocio (customers, deals, ...).
// Los requests de update usan punteros: un campo ausente no cambia.
package crm

import (
	"time"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/contracts"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/customers"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/deals"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/jobworks"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/opportunities"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/refdata"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/tickets"
)

// ─── Customers ───

type CustomerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	Industry string `json:"industry"`
	Status   string `json:"status"`
	OwnerID  string `json:"owner_id"`
}

func (r CustomerRequest) Input() customers.Input {
	return customers.Input{
		Name: r.Name, Email: r.Email, Phone: r.Phone, Company: r.Company,
		Industry: r.Industry, Status: r.Status, OwnerID: r.OwnerID,
	}
}

type CustomerUpdateRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Company  *string `json:"company"`
	Industry *string `json:"industry"`
	Status   *string `json:"status"`
	OwnerID  *string `json:"owner_id"`
}

func (r CustomerUpdateRequest) Update() customers.Update {
	return customers.Update{
		Name: r.Name, Email: r.Email, Phone: r.Phone, Company: r.Company,
		Industry: r.Industry, Status: r.Status, OwnerID: r.OwnerID,
	}
}

// ─── Deals ───

type DealRequest struct {
	CustomerID      string     `json:"customer_id"`
	Title           string     `json:"title"`
	ValueCents      int64      `json:"value_cents"`
	Currency        string     `json:"currency"`
	Stage           string     `json:"stage"`
	Probability     *int       `json:"probability"`
	Source          string     `json:"source"`
	OwnerID         string     `json:"owner_id"`
	ExpectedCloseAt *time.Time `json:"expected_close_at"`
}

func (r DealRequest) Input() deals.Input {
	return deals.Input{
		CustomerID: r.CustomerID, Title: r.Title, ValueCents: r.ValueCents,
		Currency: r.Currency, Stage: r.Stage, Probability: r.Probability,
		Source: r.Source, OwnerID: r.OwnerID, ExpectedCloseAt: r.ExpectedCloseAt,
	}
}

type DealUpdateRequest struct {
	Title           *string    `json:"title"`
	ValueCents      *int64     `json:"value_cents"`
	Currency        *string    `json:"currency"`
	Probability     *int       `json:"probability"`
	Source          *string    `json:"source"`
	OwnerID         *string    `json:"owner_id"`
	ExpectedCloseAt *time.Time `json:"expected_close_at"`
}

func (r DealUpdateRequest) Update() deals.Update {
	return deals.Update{
		Title: r.Title, ValueCents: r.ValueCents, Currency: r.Currency,
		Probability: r.Probability, Source: r.Source, OwnerID: r.OwnerID,
		ExpectedCloseAt: r.ExpectedCloseAt,
	}
}

// StageRequest es el body de POST /v1/deals/{id}/stage.
type StageRequest struct {
	Stage string `json:"stage"`
}

// ─── Opportunities ───

type OpportunityRequest struct {
	CustomerID     string `json:"customer_id"`
	Title          string `json:"title"`
	EstimatedCents int64  `json:"estimated_cents"`
	Currency       string `json:"currency"`
	Source         string `json:"source"`
	OwnerID        string `json:"owner_id"`
}

func (r OpportunityRequest) Input() opportunities.Input {
	return opportunities.Input{
		CustomerID: r.CustomerID, Title: r.Title, EstimatedCents: r.EstimatedCents,
		Currency: r.Currency, Source: r.Source, OwnerID: r.OwnerID,
	}
}

type OpportunityUpdateRequest struct {
	Title          *string `json:"title"`
	EstimatedCents *int64  `json:"estimated_cents"`
	Currency       *string `json:"currency"`
	Source         *string `json:"source"`
	OwnerID        *string `json:"owner_id"`
}

func (r OpportunityUpdateRequest) Update() opportunities.Update {
	return opportunities.Update{
		Title: r.Title, EstimatedCents: r.EstimatedCents, Currency: r.Currency,
		Source: r.Source, OwnerID: r.OwnerID,
	}
}

// ConvertResponse es la respuesta de POST /v1/opportunities/{id}/convert.
type ConvertResponse struct {
	Opportunity repository.Opportunity `json:"opportunity"`
	Deal        repository.Deal        `json:"deal"`
}

// ─── Contracts ───

type ContractRequest struct {
	CustomerID string    `json:"customer_id"`
	DealID     string    `json:"deal_id"`
	Title      string    `json:"title"`
	ValueCents int64     `json:"value_cents"`
	Currency   string    `json:"currency"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	AutoRenew  bool      `json:"auto_renew"`
}

func (r ContractRequest) Input() contracts.Input {
	return contracts.Input{
		CustomerID: r.CustomerID, DealID: r.DealID, Title: r.Title,
		ValueCents: r.ValueCents, Currency: r.Currency,
		StartsAt: r.StartsAt, EndsAt: r.EndsAt, AutoRenew: r.AutoRenew,
	}
}

type ContractUpdateRequest struct {
	Title      *string    `json:"title"`
	ValueCents *int64     `json:"value_cents"`
	Currency   *string    `json:"currency"`
	StartsAt   *time.Time `json:"starts_at"`
	EndsAt     *time.Time `json:"ends_at"`
	AutoRenew  *bool      `json:"auto_renew"`
}

func (r ContractUpdateRequest) Update() contracts.Update {
	return contracts.Update{
		Title: r.Title, ValueCents: r.ValueCents, Currency: r.Currency,
		StartsAt: r.StartsAt, EndsAt: r.EndsAt, AutoRenew: r.AutoRenew,
	}
}

// ItemsResponse envuelve listados no paginados.
type ItemsResponse[T any] struct {
	Items []T `json:"items"`
}

// ─── Tickets ───

type TicketRequest struct {
	CustomerID  string `json:"customer_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	AssigneeID  string `json:"assignee_id"`
}

func (r TicketRequest) Input() tickets.Input {
	return tickets.Input{
		CustomerID: r.CustomerID, Title: r.Title, Description: r.Description,
		Category: r.Category, Priority: r.Priority, AssigneeID: r.AssigneeID,
	}
}

type TicketUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Priority    *string `json:"priority"`
}

func (r TicketUpdateRequest) Update() tickets.Update {
	return tickets.Update{Title: r.Title, Description: r.Description, Category: r.Category, Priority: r.Priority}
}

// StatusRequest es el body de POST /{id}/status (tickets y jobworks).
type StatusRequest struct {
	Status string `json:"status"`
}

// AssignRequest es el body de POST /v1/tickets/{id}/assign.
type AssignRequest struct {
	UserID string `json:"user_id"`
}

// ─── JobWorks ───

type JobWorkRequest struct {
	CustomerID     string     `json:"customer_id"`
	Reference      string     `json:"reference"`
	Description    string     `json:"description"`
	Quantity       int64      `json:"quantity"`
	UnitPriceCents int64      `json:"unit_price_cents"`
	AssigneeID     string     `json:"assignee_id"`
	DueAt          *time.Time `json:"due_at"`
}

func (r JobWorkRequest) Input() jobworks.Input {
	return jobworks.Input{
		CustomerID: r.CustomerID, Reference: r.Reference, Description: r.Description,
		Quantity: r.Quantity, UnitPriceCents: r.UnitPriceCents,
		AssigneeID: r.AssigneeID, DueAt: r.DueAt,
	}
}

type JobWorkUpdateRequest struct {
	Reference      *string    `json:"reference"`
	Description    *string    `json:"description"`
	Quantity       *int64     `json:"quantity"`
	UnitPriceCents *int64     `json:"unit_price_cents"`
	AssigneeID     *string    `json:"assignee_id"`
	DueAt          *time.Time `json:"due_at"`
}

func (r JobWorkUpdateRequest) Update() jobworks.Update {
	return jobworks.Update{
		Reference: r.Reference, Description: r.Description, Quantity: r.Quantity,
		UnitPriceCents: r.UnitPriceCents, AssigneeID: r.AssigneeID, DueAt: r.DueAt,
	}
}

// ─── Reference data ───

type RefItemRequest struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	SortOrder int    `json:"sort_order"`
	Active    *bool  `json:"active"`
}

func (r RefItemRequest) Input() refdata.Input {
	return refdata.Input{Key: r.Key, Label: r.Label, SortOrder: r.SortOrder, Active: r.Active}
}

type RefItemUpdateRequest struct {
	Label     *string `json:"label"`
	SortOrder *int    `json:"sort_order"`
	Active    *bool   `json:"active"`
}

func (r RefItemUpdateRequest) Update() refdata.Update {
	return refdata.Update{Label: r.Label, SortOrder: r.SortOrder, Active: r.Active}
}
