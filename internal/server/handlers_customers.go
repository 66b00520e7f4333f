package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/iterate-labs/newsletter-portal/internal/db"
	"github.com/iterate-labs/newsletter-portal/internal/types"
)

// handleListCustomers lists customers; ?active=true restricts to active ones.
func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	customers, err := s.store.ListCustomers(r.Context(), activeOnly)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"customers": customers,
		"count":     len(customers),
	})
}

// handleCreateCustomer creates a new customer
func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req types.CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	customer, err := s.store.CreateCustomer(r.Context(), customerInput(&req))
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusCreated, customer)
}

// handleGetCustomer retrieves a customer by ID
func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid customer ID")
		return
	}

	customer, err := s.store.GetCustomer(r.Context(), customerID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if customer == nil {
		s.errorResponse(w, http.StatusNotFound, "Customer not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, customer)
}

// handleUpdateCustomer replaces a customer's profile
func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid customer ID")
		return
	}

	var req types.CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	customer, err := s.store.UpdateCustomer(r.Context(), customerID, customerInput(&req))
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if customer == nil {
		s.errorResponse(w, http.StatusNotFound, "Customer not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, customer)
}

// handleDeleteCustomer deletes a customer and its runs
func (s *Server) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid customer ID")
		return
	}

	if err := s.store.DeleteCustomer(r.Context(), customerID); err != nil {
		s.errorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func customerInput(req *types.CustomerRequest) *db.CustomerInput {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return &db.CustomerInput{
		Name:               req.Name,
		Aliases:            req.Aliases,
		Industry:           req.Industry,
		SubVerticals:       req.SubVerticals,
		WebsiteURL:         req.WebsiteURL,
		Active:             active,
		Frequency:          req.Frequency,
		Tone:               req.Tone,
		MaxItemsPerSection: req.MaxItemsPerSection,
		NewsKeywords:       req.NewsKeywords,
		Competitors:        req.Competitors,
		KeyPriorities:      req.KeyPriorities,
		SensitiveTopics:    req.SensitiveTopics,
		CurrentInitiatives: req.CurrentInitiatives,
	}
}
