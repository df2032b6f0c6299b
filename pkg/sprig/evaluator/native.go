package evaluator

import "fmt"

// ToNative converts a value to plain Go data suitable for encoding.
// String hash keys are used as is; other keys are rendered with Inspect so
// they survive in map[string]any. Two keys that render the same, such as 1
// and "1", are an error. Functions become their source text.
func ToNative(obj Object) (any, error) {
	switch obj := obj.(type) {
	case nil:
		return nil, nil
	case *Integer:
		return obj.Value, nil
	case *Boolean:
		return obj.Value, nil
	case *String:
		return obj.Value, nil
	case *Null:
		return nil, nil
	case *ReturnValue:
		return ToNative(obj.Value)
	case *Array:
		out := make([]any, len(obj.Elements))
		for i, e := range obj.Elements {
			v, err := ToNative(e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case *Hash:
		return hashToNative(obj)
	default:
		return obj.Inspect(), nil
	}
}

func hashToNative(hash *Hash) (map[string]any, error) {
	out := make(map[string]any, hash.Len())
	owners := make(map[string]Object, hash.Len())

	for _, hk := range hash.Order {
		pair := hash.Pairs[hk]

		name := pair.Key.Inspect()
		if s, ok := pair.Key.(*String); ok {
			name = s.Value
		}
		if prev, ok := owners[name]; ok {
			return nil, fmt.Errorf("hash keys %s and %s both encode as %q",
				inspectElement(prev), inspectElement(pair.Key), name)
		}
		owners[name] = pair.Key

		v, err := ToNative(pair.Value)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}
