// Package dateinput turns user-typed dates into calendar dates. It accepts
// YYYY-MM-DD as well as English phrases such as "tomorrow" or "next friday".
package dateinput

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/brk3/habitcal/pkg/habit"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var ErrUnrecognized = errors.New("unrecognized date")

// isoLike matches input that starts out as a YYYY-MM-DD date. Such input
// must be exactly that; phrases are only tried on everything else.
var isoLike = regexp.MustCompile(`^\d{4}-\d`)

var parser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// Parse resolves s relative to now. An empty string yields the zero Date.
func Parse(s string, now time.Time) (habit.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return habit.Date{}, nil
	}
	if strings.EqualFold(s, "today") {
		return habit.DateOf(now), nil
	}
	if d, err := habit.ParseDate(s); err == nil {
		return d, nil
	}
	if isoLike.MatchString(s) {
		return habit.Date{}, fmt.Errorf("%w: %q: expected YYYY-MM-DD", ErrUnrecognized, s)
	}

	r, err := parser.Parse(s, now)
	if err != nil {
		return habit.Date{}, fmt.Errorf("parse %q: %w", s, err)
	}
	if r == nil {
		return habit.Date{}, fmt.Errorf("%w: %q", ErrUnrecognized, s)
	}
	return habit.DateOf(r.Time), nil
}

// Validate is shaped for form fields.
func Validate(s string) error {
	_, err := Parse(s, time.Now())
	return err
}
