package pysource

import (
	"regexp"
	"strings"

	"github.com/deepdive-tools/deepdive/pkg/textutil"
)

// callPattern pairs a tag with its ordered detection patterns. The table is
// scanned in order and at most one site per tag is recorded per line, using
// the first pattern that matches.
type callPattern struct {
	tag      CallTag
	patterns []*regexp.Regexp
}

var externalCallTable = []callPattern{
	{CallDatabase, compilePatterns(
		`\.find_one\(`,
		`\.find_many\(`,
		`\.find\(`,
		`\.insert_one\(`,
		`\.insert_many\(`,
		`\.update_one\(`,
		`\.update_many\(`,
		`\.delete_one\(`,
		`\.delete_many\(`,
		`\.aggregate\(`,
		`\.execute\(`,
		`cursor\.`,
		`collection\.`,
		`motor\.`,
		`beanie\.`,
		`pymongo\.`,
		`mongodb`,
	)},
	{CallNetwork, compilePatterns(
		`aiohttp\.`,
		`httpx\.`,
		`requests\.`,
		`\.fetch\(`,
		`session\.get\(`,
		`session\.post\(`,
		`session\.put\(`,
		`session\.delete\(`,
		`session\.patch\(`,
		`client\.get\(`,
		`client\.post\(`,
		`ClientSession\(`,
		`AsyncClient\(`,
		`Response\(`,
	)},
	{CallFilesystem, compilePatterns(
		`\bopen\(`,
		`\.read\(`,
		`\.write\(`,
		`\.read_text\(`,
		`\.write_text\(`,
		`\.mkdir\(`,
		`\.rmdir\(`,
		`\.unlink\(`,
		`os\.remove\(`,
		`shutil\.`,
	)},
	{CallMessaging, compilePatterns(
		`\.publish\(`,
		`\.send\(`,
		`\.consume\(`,
		`\.subscribe\(`,
		`channel\.`,
		`queue\.`,
		`topic\.`,
		`kafka\.`,
		`redis\.pub`,
		`celery\.`,
		`kombu\.`,
	)},
	{CallIPC, compilePatterns(
		`subprocess\.`,
		`multiprocessing\.`,
		`shared_memory`,
		`\.socket\(`,
		`Popen\(`,
		`pipe\(`,
		`mmap\.`,
	)},
}

func compilePatterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(`(?i)`+e))
	}

	return out
}

// scanExternalCalls runs the pattern table over each source line. Matching
// is case insensitive and textual, so commented-out calls are reported too.
func scanExternalCalls(src []byte) []ExternalCallSite {
	calls := []ExternalCallSite{}

	for i, line := range textutil.SplitLines(string(src)) {
		for _, entry := range externalCallTable {
			for _, re := range entry.patterns {
				if !re.MatchString(line) {
					continue
				}

				calls = append(calls, ExternalCallSite{
					Tag:     entry.tag,
					Pattern: patternSource(re),
					Line:    i + 1,
					Context: truncate(strings.TrimSpace(line), contextLimit),
				})

				break
			}
		}
	}

	return calls
}

// patternSource returns the pattern text without the case folding prefix.
func patternSource(re *regexp.Regexp) string {
	const prefix = `(?i)`

	s := re.String()
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):]
	}

	return s
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	return s[:limit]
}
