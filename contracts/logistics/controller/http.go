package controller

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"go.dedis.ch/courier"
	"go.dedis.ch/courier/contracts/logistics"
	"go.dedis.ch/courier/contracts/logistics/types"
	proxyhttp "go.dedis.ch/courier/proxy/http"
	"golang.org/x/xerrors"
)

const (
	membersPath    = "/logistics/members/"
	deliveriesPath = "/logistics/deliveries/"
	reservePath    = "/logistics/reserve"
)

type memberResponse struct {
	Account    string `json:"account"`
	Balance    string `json:"balance"`
	Reputation uint64 `json:"reputation"`
	Penalties  uint64 `json:"penalties"`
}

type membersResponse struct {
	Members []memberResponse `json:"members"`
}

type deliveryResponse struct {
	ID              string `json:"id"`
	Requester       string `json:"requester"`
	AssistingMember string `json:"assistingMember,omitempty"`
	Fee             string `json:"fee"`
	Status          string `json:"status"`
}

type reserveResponse struct {
	Total  string `json:"total"`
	Escrow string `json:"escrow"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestID,omitempty"`
}

// handlers serves the records of the ledger in JSON. The amounts are decimal
// numbers of coins.
type handlers struct {
	ledger *logistics.Ledger
	logger zerolog.Logger
}

func newHandlers(ledger *logistics.Ledger) handlers {
	return handlers{
		ledger: ledger,
		logger: courier.Logger.With().Str("role", "logistics http").Logger(),
	}
}

func (h handlers) member(w http.ResponseWriter, r *http.Request) {
	if !h.checkMethod(w, r) {
		return
	}

	account := strings.TrimPrefix(r.URL.Path, membersPath)
	if account == "" {
		h.members(w, r)
		return
	}

	member, err := h.ledger.GetMember(types.Account(account))
	if err != nil {
		h.fail(w, r, statusOf(err), err)
		return
	}

	h.write(w, r, newMemberResponse(member))
}

// members lists every member of the ledger.
func (h handlers) members(w http.ResponseWriter, r *http.Request) {
	members, err := h.ledger.ListMembers()
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	res := membersResponse{Members: make([]memberResponse, len(members))}
	for i, member := range members {
		res.Members[i] = newMemberResponse(member)
	}

	h.write(w, r, res)
}

func (h handlers) delivery(w http.ResponseWriter, r *http.Request) {
	if !h.checkMethod(w, r) {
		return
	}

	id, err := types.ParseDeliveryID(strings.TrimPrefix(r.URL.Path, deliveriesPath))
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}

	delivery, found, err := h.ledger.GetDelivery(id)
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	if !found {
		h.fail(w, r, http.StatusNotFound, xerrors.Errorf("unknown delivery '%v'", id))
		return
	}

	h.write(w, r, deliveryResponse{
		ID:              delivery.ID.String(),
		Requester:       string(delivery.Requester),
		AssistingMember: string(delivery.AssistingMember),
		Fee:             delivery.Fee.String(),
		Status:          delivery.Status.String(),
	})
}

func (h handlers) reserve(w http.ResponseWriter, r *http.Request) {
	if !h.checkMethod(w, r) {
		return
	}

	reserve, err := h.ledger.GetReserve()
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	h.write(w, r, reserveResponse{
		Total:  reserve.Total.String(),
		Escrow: reserve.Escrow.String(),
	})
}

func (h handlers) checkMethod(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet {
		return true
	}

	w.Header().Set("Allow", http.MethodGet)
	h.fail(w, r, http.StatusMethodNotAllowed, xerrors.Errorf("method %s not allowed", r.Method))

	return false
}

func (h handlers) write(w http.ResponseWriter, r *http.Request, v interface{}) {
	h.respond(w, r, http.StatusOK, v)
}

func (h handlers) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("requestID", proxyhttp.RequestID(r)).
			Msg("failed to serve request")
	}

	h.respond(w, r, status, errorResponse{
		Error:     err.Error(),
		RequestID: proxyhttp.RequestID(r),
	})
}

func (h handlers) respond(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		h.logger.Warn().Err(err).Str("requestID", proxyhttp.RequestID(r)).
			Msg("failed to write response")
	}
}

func newMemberResponse(member types.Member) memberResponse {
	return memberResponse{
		Account:    string(member.Account),
		Balance:    member.Balance.String(),
		Reputation: member.Reputation,
		Penalties:  member.Penalties,
	}
}

func statusOf(err error) int {
	if xerrors.Is(err, logistics.UnknownRecordError{}) {
		return http.StatusNotFound
	}

	return http.StatusInternalServerError
}
