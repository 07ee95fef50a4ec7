package contract

import (
	"fmt"
	"net/url"
	"strings"
)

// parsePlaceholders returns the :name placeholder names in template, in
// order of appearance. A placeholder occupies a whole path segment.
func parsePlaceholders(template string) ([]string, error) {
	if template == "" {
		return nil, nil
	}
	var names []string
	seen := make(map[string]bool)
	for _, seg := range strings.Split(template, "/") {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		name := seg[1:]
		if name == "" {
			return nil, fmt.Errorf("path template %q has an empty placeholder", template)
		}
		if seen[name] {
			return nil, fmt.Errorf("path template %q repeats placeholder :%s", template, name)
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}

// interpolate substitutes each placeholder with the stringified,
// percent-encoded parameter value. A placeholder without a corresponding
// parameter is reported as a validation issue; the registration-time key
// check makes this unreachable for endpoints whose pathParams schema
// enumerates its keys.
func interpolate(template string, params Params) (string, error) {
	if !strings.Contains(template, ":") {
		return template, nil
	}
	segs := strings.Split(template, "/")
	var issues []Issue
	for i, seg := range segs {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		name := seg[1:]
		value, ok := params[name]
		if !ok {
			issues = append(issues, Issue{Path: []any{name}, Message: "missing path parameter"})
			continue
		}
		segs[i] = url.PathEscape(fmt.Sprint(value))
	}
	if len(issues) > 0 {
		return "", &ValidationError{Issues: issues}
	}
	return strings.Join(segs, "/"), nil
}

// encodeQuery turns search parameters into url.Values. Slice values
// expand into repeated keys; everything else is stringified.
func encodeQuery(params Params) url.Values {
	if len(params) == 0 {
		return nil
	}
	values := make(url.Values, len(params))
	for key, value := range params {
		switch v := value.(type) {
		case []string:
			for _, item := range v {
				values.Add(key, item)
			}
		case []any:
			for _, item := range v {
				values.Add(key, fmt.Sprint(item))
			}
		default:
			values.Add(key, fmt.Sprint(v))
		}
	}
	return values
}
