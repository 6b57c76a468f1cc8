package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/teevee/pkg/domain"
)

var (
	ontGuard   = regexp.MustCompile(`^\[?\s*#ONT\(\s*([A-Za-z0-9_\-]+)\s*\)\s*\]?$`)
	ifGuard    = regexp.MustCompile(`^#IF\(\s*#([A-Za-z][A-Za-z0-9_]*)\s*\)$`)
	macroGuard = regexp.MustCompile(`^#([A-Za-z][A-Za-z0-9_]*)$`)
)

// ParseGuard compiles the guard notation used in flow documents:
//
//	#NAME, #IF(#NAME)          macro
//	#ONT(scifi), [#ONT(scifi)] ontology category
//	#UNX, *                    anything
//	error                      fallback, tried last
//	`yes`, yes                 literal phrase
func ParseGuard(expr string) (domain.Guard, error) {
	s := strings.TrimSpace(expr)
	switch {
	case s == "":
		return domain.Guard{}, fmt.Errorf("empty guard")
	case s == "error":
		return domain.Guard{Kind: domain.GuardError}, nil
	case s == "*" || s == "#UNX":
		return domain.Guard{Kind: domain.GuardAny}, nil
	}
	if m := ontGuard.FindStringSubmatch(s); m != nil {
		return domain.Guard{Kind: domain.GuardOntology, Arg: strings.ToLower(m[1])}, nil
	}
	if m := ifGuard.FindStringSubmatch(s); m != nil {
		return domain.Guard{Kind: domain.GuardMacro, Arg: strings.ToUpper(m[1])}, nil
	}
	if m := macroGuard.FindStringSubmatch(s); m != nil {
		return domain.Guard{Kind: domain.GuardMacro, Arg: strings.ToUpper(m[1])}, nil
	}
	if strings.HasPrefix(s, "#") {
		return domain.Guard{}, fmt.Errorf("unsupported guard %q", s)
	}
	lit := domain.NormalizeText(strings.Trim(s, "`"))
	if strings.TrimSpace(lit) == "" {
		return domain.Guard{}, fmt.Errorf("empty literal guard %q", s)
	}
	return domain.Guard{Kind: domain.GuardLiteral, Arg: strings.Join(strings.Fields(lit), " ")}, nil
}
