package utils

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ValidateObjectKey reports whether key is a safe blob store key: relative,
// slash separated, without empty, "." or ".." segments, and free of
// control characters. Percent-encoded keys are checked after decoding.
func ValidateObjectKey(key string) bool {
	if key == "" || strings.ContainsAny(key, "\\\x00") {
		return false
	}

	decoded, err := url.PathUnescape(key)
	if err != nil || decoded != key && !ValidateObjectKey(decoded) {
		return false
	}

	if strings.HasPrefix(key, "/") || strings.HasSuffix(key, "/") {
		return false
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
		for _, r := range seg {
			if r < 0x20 || r == 0x7f {
				return false
			}
		}
	}
	return true
}

// JoinKey joins key segments with "/", skipping empty ones and trimming
// stray slashes.
func JoinKey(parts ...string) string {
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			segs = append(segs, p)
		}
	}
	return strings.Join(segs, "/")
}

// PartitionKey builds a Hive-style lake key:
// <prefix>/<table>/dt=<YYYY-MM-DD>/hr=<HH>/run=<runID>/<file>
func PartitionKey(prefix, table string, t time.Time, runID, file string) string {
	return JoinKey(
		prefix,
		table,
		"dt="+t.Format("2006-01-02"),
		fmt.Sprintf("hr=%02d", t.Hour()),
		"run="+runID,
		file,
	)
}
