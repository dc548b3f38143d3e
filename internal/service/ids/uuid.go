package ids

import (
	drepo "TrueSignal/internal/domain/repository"

	"github.com/google/uuid"
)

// UUIDGenerator issues random v4 identifiers.
type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator { return UUIDGenerator{} }

var _ drepo.IDGenerator = UUIDGenerator{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }
