package utils

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// AttributeMap is a loosely typed set of component attributes, as decoded from JSON.
type AttributeMap map[string]interface{}

// Has returns whether the attribute is present.
func (am AttributeMap) Has(name string) bool {
	_, has := am[name]
	return has
}


// Float64 returns the attribute as a float64, accepting any numeric type or numeric string.
func (am AttributeMap) Float64(name string, def float64) (float64, error) {
	x, has := am[name]
	if !has {
		return def, nil
	}
	v, err := cast.ToFloat64E(x)
	if err != nil {
		return 0, NewAttributeTypeError(name, "a number", x)
	}
	return v, nil
}



// StringSlice returns the attribute as a slice of strings.
func (am AttributeMap) StringSlice(name string) ([]string, error) {
	x, has := am[name]
	if !has || x == nil {
		return nil, nil
	}
	v, err := cast.ToStringSliceE(x)
	if err != nil {
		return nil, NewAttributeTypeError(name, "a list of strings", x)
	}
	return v, nil
}

// TransformAttributeMap decodes the attributes into `result`, a pointer to a struct with json
// tags. Numeric strings and mixed number types are converted; unknown keys are an error.
func TransformAttributeMap(attributes AttributeMap, result interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           result,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return errors.Wrap(decoder.Decode(attributes), "error decoding attributes")
}
