package parser

// Field extraction works over duck-typed JSON via ordered fallback path lists:
// for each target field the candidate paths are probed in priority order and
// the first present, non-null value wins. The lists are data, not branching,
// so tests can enumerate them.

var (
	principalPaths = [][]string{
		{"protoPayload", "authenticationInfo", "principalEmail"},
		{"user", "username"},
		{"principal"},
	}

	operationPaths = [][]string{
		{"protoPayload", "methodName"},
		{"verb"},
		{"operation"},
	}

	namespacePaths = [][]string{
		{"objectRef", "namespace"},
		{"namespace"},
	}

	resourceNamePaths = [][]string{
		{"objectRef", "name"},
		{"resource_name"},
	}

	clusterPaths = [][]string{
		{"resource", "labels", "cluster_name"},
		{"cluster"},
	}

	resourceTypePaths = [][]string{
		{"objectRef", "resource"},
		{"resource", "type"},
	}

	statusCodePaths = [][]string{
		{"protoPayload", "status", "code"},
		{"responseStatus", "code"},
	}

	timestampPaths = [][]string{
		{"timestamp"},
		{"receiveTimestamp"},
		{"requestReceivedTimestamp"},
		{"stageTimestamp"},
	}

	protoResourceNamePath = []string{"protoPayload", "resourceName"}
)

// resourceTypeTokens maps resource-name path fragments to resource words, in
// probe order.
var resourceTypeTokens = []struct {
	fragment string
	resource string
}{
	{"/pods/", "pods"},
	{"/configmaps/", "configmaps"},
	{"/leases/", "leases"},
	{"/secrets/", "secrets"},
	{"/deployments/", "deployments"},
	{"/services/", "services"},
	{"/namespaces/", "namespaces"},
}

func lookup(value map[string]interface{}, path []string) (interface{}, bool) {
	var current interface{} = value
	for _, key := range path {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func lookupString(value map[string]interface{}, path []string) (string, bool) {
	raw, ok := lookup(value, path)
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

// firstString resolves the first present string value from an ordered path list.
func firstString(value map[string]interface{}, paths [][]string) (string, bool) {
	for _, path := range paths {
		if s, ok := lookupString(value, path); ok {
			return s, true
		}
	}
	return "", false
}

// firstInt resolves the first present numeric value from an ordered path list.
func firstInt(value map[string]interface{}, paths [][]string) (int, bool) {
	for _, path := range paths {
		raw, ok := lookup(value, path)
		if !ok {
			continue
		}
		if f, ok := raw.(float64); ok {
			return int(f), true
		}
	}
	return 0, false
}
