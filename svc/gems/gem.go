// Package gems generates SIMCE improvement plans ("gems") with a generative
// model and keeps them in an append-only store.
package gems

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound         = errors.New("gem not found")
	ErrUnknownVariant   = errors.New("unknown gem variant")
	ErrGenerationFailed = errors.New("gem generation failed")
	ErrStoreFailure     = errors.New("gem store failure")
	ErrMissingDeps      = errors.New("gems service is missing a dependency")
)

// DefaultListLimit caps List results.
const DefaultListLimit = 10

// Variant names the prompt family a gem was generated with.
type Variant string

const (
	// VariantSchool is the school improvement plan keyed by school and
	// subject scores.
	VariantSchool Variant = "school"
	// VariantSIMCE is the SIMCE Lenguaje plan keyed by level and
	// achievement percentage.
	VariantSIMCE Variant = "simce_lenguaje"
)

// SchoolInput feeds the school improvement plan. Levels are whole SIMCE
// scores.
type SchoolInput struct {
	SchoolName   string `json:"schoolName,omitempty" bson:"school_name,omitempty" firestore:"schoolName,omitempty" validate:"required,max=200"`
	Subject      string `json:"subject,omitempty" bson:"subject,omitempty" firestore:"subject,omitempty" validate:"required,max=100"`
	CurrentLevel *int   `json:"currentLevel,omitempty" bson:"current_level,omitempty" firestore:"currentLevel,omitempty" validate:"required,gte=0,lte=500"`
	TargetLevel  *int   `json:"targetLevel,omitempty" bson:"target_level,omitempty" firestore:"targetLevel,omitempty" validate:"required,gte=0,lte=500"`
}

// SIMCEInput feeds the SIMCE Lenguaje plan. Nivel accepts "4° básico" as
// well as a bare grade number. Resultado is the achievement percentage.
type SIMCEInput struct {
	Nivel          Text     `json:"nivel,omitempty" bson:"nivel,omitempty" firestore:"nivel,omitempty" validate:"required,max=50"`
	Resultado      *float64 `json:"resultado,omitempty" bson:"resultado,omitempty" firestore:"resultado,omitempty" validate:"required,gte=0,lte=100"`
	Estudiantes    *int     `json:"estudiantes,omitempty" bson:"estudiantes,omitempty" firestore:"estudiantes,omitempty" validate:"omitempty,gte=0"`
	Vulnerabilidad Text     `json:"vulnerabilidad,omitempty" bson:"vulnerabilidad,omitempty" firestore:"vulnerabilidad,omitempty" validate:"max=50"`
	Recursos       string   `json:"recursos,omitempty" bson:"recursos,omitempty" firestore:"recursos,omitempty" validate:"max=500"`
}

// Gem is a generated plan. It is never updated or deleted.
type Gem struct {
	ID          string  `json:"id" bson:"_id" firestore:"-"`
	Variant     Variant `json:"variant" bson:"variant" firestore:"variant"`
	SchoolInput `bson:",inline"`
	SIMCEInput  `bson:",inline"`
	Plan        string    `json:"plan" bson:"plan" firestore:"plan"`
	OwnerEmail  string    `json:"ownerEmail,omitempty" bson:"owner_email,omitempty" firestore:"ownerEmail,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at" firestore:"createdAt"`
}

// Store persists gems. List returns the newest gems first.
type Store interface {
	Create(ctx context.Context, gem Gem) error
	Get(ctx context.Context, id string) (*Gem, error)
	List(ctx context.Context, limit int) ([]Gem, error)
}

// Text is a free-form value the form may send as a string or a number,
// such as "alta" or 45.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*t = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(strings.TrimSpace(s))
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("expected a string or number: %w", err)
		}
		*t = Text(n.String())
	}
	return nil
}

func (t Text) String() string { return string(t) }
