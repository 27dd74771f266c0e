package symbolizer

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownProperty = errors.New("UnknownPropertyError")
	ErrPropertyNotSet  = errors.New("PropertyNotSetError")
	ErrTypeMismatch    = errors.New("TypeError")
	ErrDasharrayParse  = errors.New("DasharrayParseError")
	ErrUnknownKind     = errors.New("UnknownSymbolizerKindError")
	ErrColorizer       = errors.New("RasterColorizerError")
	ErrGroupProperties = errors.New("GroupPropertiesError")
)

// KeyConversionError means an enumeration was stored under a key with no enum converter. The registry guarantees
// this cannot happen for well-formed bags, so it is raised with panic.
type KeyConversionError struct {
	Key  Key
	Name string
}

func (e KeyConversionError) Error() string {
	return fmt.Sprintf("KeyConversionError: no enumeration converter for key %q (id %d)", e.Name, e.Key)
}
