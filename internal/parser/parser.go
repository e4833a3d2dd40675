// Package parser normalizes loosely-structured Kubernetes/GKE audit log
// records into canonical entries. It tolerates three input shapes: a JSON
// array, newline-delimited JSON, and a single JSON object.
package parser

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/sentinelstack/audit-sentinel/internal/models"
	"github.com/sentinelstack/audit-sentinel/internal/utils"
)

// Parser converts raw JSON text into canonical audit entries.
type Parser struct {
	logger *slog.Logger
	now    func() time.Time
}

// New constructs a Parser. The logger is a diagnostic channel only: it reports
// defaulted fields at debug level without changing outputs.
func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// ParseLogs parses text with the default parser.
func ParseLogs(text string) ([]models.Entry, error) {
	return New(nil).ParseLogs(text)
}

// ParseLogs attempts the three parse strategies in order and returns the
// canonical entries of the first that fully succeeds. Malformed top-level JSON
// that no strategy can read surfaces a *ParseError and aborts the batch.
func (p *Parser) ParseLogs(text string) ([]models.Entry, error) {
	// Strategy 1: a single JSON array. The bracket check matters: unmarshaling
	// the literal "null" into a slice also succeeds, but null is not an array
	// and must fall through to the later strategies.
	if strings.HasPrefix(strings.TrimSpace(text), "[") {
		var array []interface{}
		if err := json.Unmarshal([]byte(text), &array); err == nil {
			entries := make([]models.Entry, 0, len(array))
			for _, element := range array {
				entry, err := p.normalize(element)
				if err != nil {
					return nil, err
				}
				entries = append(entries, entry)
			}
			return entries, nil
		}
	}

	// Strategy 2: newline-delimited JSON. Lines that fail to parse are
	// skipped; normalization errors still abort the batch.
	var entries []models.Entry
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var value interface{}
		if err := json.Unmarshal([]byte(line), &value); err != nil {
			continue
		}
		entry, err := p.normalize(value)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	// Strategy 3: a single JSON object, only when nothing parsed so far.
	if len(entries) == 0 {
		var value interface{}
		if err := json.Unmarshal([]byte(text), &value); err != nil {
			return nil, syntaxError(err)
		}
		entry, err := p.normalize(value)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// normalize extracts canonical fields from one decoded record. It never fails
// today (missing data becomes defaults), but the error return is part of the
// batch contract for stricter validation.
func (p *Parser) normalize(value interface{}) (models.Entry, error) {
	obj, _ := value.(map[string]interface{})

	principal, ok := firstString(obj, principalPaths)
	if !ok {
		principal = "unknown"
		p.logger.Debug("principal missing, defaulting", slog.String("default", principal))
	}

	operation := "unknown"
	if raw, ok := firstString(obj, operationPaths); ok {
		operation = normalizeOperation(raw)
	}

	protoResourceName, hasProtoResourceName := lookupString(obj, protoResourceNamePath)

	namespace := ""
	resolvedNamespace := false
	if hasProtoResourceName {
		namespace, resolvedNamespace = segmentAfter(protoResourceName, "namespaces")
	}
	if !resolvedNamespace {
		namespace, resolvedNamespace = firstString(obj, namespacePaths)
	}
	if !resolvedNamespace {
		namespace = "default"
	}

	resourceName := ""
	resolvedName := false
	if hasProtoResourceName {
		resourceName, resolvedName = lastSegment(protoResourceName), true
	}
	if !resolvedName {
		resourceName, resolvedName = firstString(obj, resourceNamePaths)
	}
	if !resolvedName {
		resourceName = "unknown"
	}

	cluster, resolvedCluster := firstString(obj, clusterPaths)
	if !resolvedCluster {
		cluster, resolvedCluster = segmentAfter(protoResourceName, "clusters")
	}
	if !resolvedCluster {
		cluster = "unknown"
	}

	resourceType := extractResourceType(obj, protoResourceName, hasProtoResourceName)

	statusCode, ok := firstInt(obj, statusCodePaths)
	if !ok {
		statusCode = 200
	}

	return models.Entry{
		Timestamp:         p.extractTimestamp(obj),
		Principal:         principal,
		ResourceType:      resourceType,
		Operation:         operation,
		Namespace:         namespace,
		ResourceName:      resourceName,
		Cluster:           cluster,
		IsSystemOperation: models.IsAutomatedPrincipal(principal),
		StatusCode:        statusCode,
		RawPayload:        obj,
	}, nil
}

// extractTimestamp probes the known timestamp fields and falls back to the
// current time when none parse. The fallback is deliberate, lossy behaviour:
// bad timestamps never fail a batch.
func (p *Parser) extractTimestamp(obj map[string]interface{}) time.Time {
	if raw, ok := firstString(obj, timestampPaths); ok {
		if ts, ok := utils.ParseAuditTimestamp(raw); ok {
			return ts
		}
		p.logger.Debug("unparseable timestamp, defaulting to now", slog.String("value", raw))
	}
	return p.now()
}

// normalizeOperation folds source-specific method names into the canonical
// verb set. Unrecognized operations pass through unchanged.
func normalizeOperation(method string) string {
	lower := strings.ToLower(method)
	switch {
	case strings.Contains(lower, "create"):
		return "create"
	case strings.Contains(lower, "update"), strings.Contains(lower, "patch"):
		return "update"
	case strings.Contains(lower, "delete"):
		return "delete"
	case strings.Contains(lower, "get"), strings.Contains(lower, "list"), strings.Contains(lower, "watch"):
		return "read"
	}
	return method
}

func extractResourceType(obj map[string]interface{}, protoResourceName string, hasProtoResourceName bool) string {
	if hasProtoResourceName {
		for _, token := range resourceTypeTokens {
			if strings.Contains(protoResourceName, token.fragment) {
				return token.resource
			}
		}
	}
	if resource, ok := firstString(obj, resourceTypePaths); ok {
		return resource
	}
	return "unknown"
}

// segmentAfter finds the path segment immediately following the given token in
// a slash-delimited resource name.
func segmentAfter(resourceName, token string) (string, bool) {
	parts := strings.Split(resourceName, "/")
	for i, part := range parts {
		if part == token && i+1 < len(parts) {
			return parts[i+1], true
		}
	}
	return "", false
}

func lastSegment(resourceName string) string {
	parts := strings.Split(resourceName, "/")
	return parts[len(parts)-1]
}
