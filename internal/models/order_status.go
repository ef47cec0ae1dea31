package models

import (
	"fmt"
	"strings"
)

// OrderStatus is stored in its canonical capitalized form.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusPreparing OrderStatus = "Preparing"
	StatusReady     OrderStatus = "Ready"
	StatusDelivered OrderStatus = "Delivered"
	StatusCancelled OrderStatus = "Cancelled"
)

// statusAliases maps lower-cased input, English or Spanish, to the canonical status.
var statusAliases = map[string]OrderStatus{
	"pending":    StatusPending,
	"pendiente":  StatusPending,
	"preparing":  StatusPreparing,
	"preparando": StatusPreparing,
	"ready":      StatusReady,
	"listo":      StatusReady,
	"delivered":  StatusDelivered,
	"entregado":  StatusDelivered,
	"cancelled":  StatusCancelled,
	"canceled":   StatusCancelled,
	"cancelado":  StatusCancelled,
}

// ParseOrderStatus canonicalizes a caller supplied status, ignoring case and surrounding spaces.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return status, nil
}

// Canonical maps a stored status, possibly written by an older client in
// another case or language, to its canonical form. Unknown values are returned unchanged.
func (s OrderStatus) Canonical() OrderStatus {
	if c, err := ParseOrderStatus(string(s)); err == nil {
		return c
	}
	return s
}

// Terminal reports whether no transition leaves the status.
func (s OrderStatus) Terminal() bool {
	c := s.Canonical()
	return c == StatusDelivered || c == StatusCancelled
}

// Actor is who asks for a status transition.
type Actor int

const (
	ActorCustomer Actor = iota
	ActorCompany
)

type transition struct {
	from, to OrderStatus
}

// transitions is the complete order state machine. Pairs not listed are rejected.
var transitions = map[transition]Actor{
	{StatusPending, StatusPreparing}: ActorCompany,
	{StatusPreparing, StatusReady}:   ActorCompany,
	{StatusReady, StatusDelivered}:   ActorCompany,
	{StatusPending, StatusCancelled}: ActorCustomer,
}

// CanTransition reports whether actor may move an order from one status to another.
func CanTransition(from, to OrderStatus, actor Actor) bool {
	allowed, ok := transitions[transition{from, to}]
	return ok && allowed == actor
}
