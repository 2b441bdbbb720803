package targets

import (
	"path"
	"strings"
)

// RelativePath computes the path of to relative to the directory of the
// referencing document from. Both are absolute tree paths.
func RelativePath(from, to string) string {
	fromSegs := segments(path.Dir(from))
	toSegs := segments(to)

	common := 0
	for common < len(fromSegs) && common < len(toSegs)-1 && fromSegs[common] == toSegs[common] {
		common++
	}

	var b strings.Builder
	for i := common; i < len(fromSegs); i++ {
		b.WriteString("../")
	}
	b.WriteString(strings.Join(toSegs[common:], "/"))
	return b.String()
}

func segments(p string) []string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
