package util

import "fmt"

// ArgListToMap turns a flat ("key", value, "key2", value2) argument
// list into a map. A trailing value without a key is stored under
// "unknown" rather than dropped.
func ArgListToMap(args ...interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(args)/2)

	if len(args) == 1 {
		fields["unknown"] = args[0]
		return fields
	}

	if len(args)%2 != 0 {
		fields["unknown"] = args[len(args)-1]
		args = args[:len(args)-1]
	}

	for i := 0; i < len(args); i += 2 {
		fields[fmt.Sprintf("%v", args[i])] = args[i+1]
	}

	return fields
}
