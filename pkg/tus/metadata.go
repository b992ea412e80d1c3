package tus

import (
	"encoding/base64"
	"sort"
	"strings"
)

// ParseMetadata decodes an Upload-Metadata header: comma-separated entries
// of `key` or `key <base64 value>`. A key without a value maps to the
// empty string. Returns nil for an empty header.
func ParseMetadata(header string) (map[string]string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, nil
	}

	md := make(map[string]string)
	for _, entry := range strings.Split(header, ",") {
		parts := strings.Fields(entry)
		switch len(parts) {
		case 0:
			return nil, ErrInvalidMetadata
		case 1:
			md[parts[0]] = ""
		case 2:
			value, err := base64.StdEncoding.DecodeString(parts[1])
			if err != nil {
				return nil, ErrInvalidMetadata
			}
			md[parts[0]] = string(value)
		default:
			return nil, ErrInvalidMetadata
		}
	}

	return md, nil
}

// SerializeMetadata re-encodes a metadata map for an Upload-Metadata
// response header. Keys are emitted in sorted order so responses are
// deterministic; empty values serialize as a bare key.
func SerializeMetadata(md map[string]string) string {
	if len(md) == 0 {
		return ""
	}

	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := md[k]; v != "" {
			entries = append(entries, k+" "+base64.StdEncoding.EncodeToString([]byte(v)))
		} else {
			entries = append(entries, k)
		}
	}

	return strings.Join(entries, ",")
}
