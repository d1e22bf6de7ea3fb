package entitycollection

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is the umbrella for configuration errors and foreign entities.
// Configuration errors are raised eagerly while building kinds, filters and comparators, never while evaluating.
var ErrInvalidArgument = errors.New("invalid argument")

var ErrInvalidKind = fmt.Errorf("%w: invalid entity kind", ErrInvalidArgument)
var ErrUnknownCriterion = fmt.Errorf("%w: unknown criterion", ErrInvalidArgument)
var ErrInvalidCriterionValue = fmt.Errorf("%w: invalid criterion value", ErrInvalidArgument)
var ErrUnknownProperty = fmt.Errorf("%w: unknown property", ErrInvalidArgument)
var ErrPropertyKindMismatch = fmt.Errorf("%w: property kind mismatch", ErrInvalidArgument)
var ErrInvalidDirection = fmt.Errorf("%w: invalid order direction", ErrInvalidArgument)
var ErrDuplicateDeclaration = fmt.Errorf("%w: duplicate declaration", ErrInvalidArgument)
var ErrUnknownAssociation = fmt.Errorf("%w: unknown association", ErrInvalidArgument)
var ErrNilSession = fmt.Errorf("%w: nil session", ErrInvalidArgument)
var ErrMalformedJSON = fmt.Errorf("%w: malformed json", ErrInvalidArgument)

// ErrEntityKindMismatch is returned when comparing an entity that is not of the comparator's kind.
var ErrEntityKindMismatch = fmt.Errorf("%w: entity is not of the declared kind", ErrInvalidArgument)
var ErrUnsupportedOperation = errors.New("unsupported operation")

var ErrBuildingQueryFailed = errors.New("building the query failed")
var ErrQueryingEntitiesFailed = errors.New("querying entities failed")
var ErrScanningDBRowFailed = errors.New("scanning db row failed")
