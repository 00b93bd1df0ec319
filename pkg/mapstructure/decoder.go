package mapstructure

import (
	"fmt"
	"reflect"
	"time"

	"kythe.io/kythe/go/util/datasize"

	"github.com/go-viper/mapstructure/v2"
)

const unknownTypeErrorFormat = "cannot decode value of type %s into type %s"

// Decode maps raw configuration onto output with weak typing,
// so strings like "true", "42" or "1.5" from env or ini-like sources
// are coerced into the declared field kinds.
func Decode(input any, output any, hooks ...mapstructure.DecodeHookFunc) error {
	hooks = append(hooks,
		ToTimeHookFunc(),
		ToTimeDurationHookFunc(),
		ToByteSizeHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata:         nil,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(hooks...),
		Result:           output,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}

func ToTimeHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeFor[time.Time]() {
			return data, nil
		}

		switch f.Kind() {
		case reflect.String:
			return time.Parse(time.RFC3339, data.(string))
		case reflect.Float64:
			return time.Unix(0, int64(data.(float64))*int64(time.Millisecond)), nil
		case reflect.Int64:
			return time.Unix(0, data.(int64)*int64(time.Millisecond)), nil
		default:
			return nil, fmt.Errorf(unknownTypeErrorFormat, f, t)
		}
	}
}

func ToTimeDurationHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeFor[time.Duration]() {
			return data, nil
		}

		switch f.Kind() {
		case reflect.String:
			return time.ParseDuration(data.(string))
		case reflect.Int:
			return time.Duration(data.(int)), nil
		case reflect.Int64:
			return time.Duration(data.(int64)), nil
		default:
			return nil, fmt.Errorf(unknownTypeErrorFormat, f, t)
		}
	}
}

func ToByteSizeHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeFor[datasize.Size]() {
			return data, nil
		}

		switch f.Kind() {
		case reflect.String:
			return datasize.Parse(data.(string))
		case reflect.Int:
			return datasize.Size(data.(int)), nil
		case reflect.Int64:
			return datasize.Size(data.(int64)), nil
		case reflect.Uint64:
			return datasize.Size(data.(uint64)), nil
		default:
			return nil, fmt.Errorf(unknownTypeErrorFormat, f, t)
		}
	}
}
