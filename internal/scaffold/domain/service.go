package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/launchforge/launchforge/pkg/db/pagination"
)

type CreateBlueprintRequest struct {
	Name      string         `json:"name"`
	Selection Selection      `json:"selection"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type GetBlueprintRequest struct {
	ID string
}

type ListBlueprintRequest struct {
	PageToken string
	PageSize  int32
}

type ListBlueprintResponse struct {
	pagination.PageInfo
	Blueprints []Blueprint `json:"blueprints"`
}

type Service interface {
	Options() []Step
	Validate(Selection) error
	Create(context.Context, CreateBlueprintRequest) (Blueprint, error)
	GetByID(context.Context, GetBlueprintRequest) (Blueprint, error)
	List(context.Context, ListBlueprintRequest) (ListBlueprintResponse, error)
}

var (
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidID   = errors.New("invalid_id")
	ErrNotFound    = errors.New("not_found")
)

// SelectionError reports the step that failed catalog validation.
type SelectionError struct {
	Step  string
	Value string
}

func (e *SelectionError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("missing selection for step %s", e.Step)
	}
	return fmt.Sprintf("unknown option %q for step %s", e.Value, e.Step)
}
