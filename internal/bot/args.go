package bot

import (
	"fmt"
	"strconv"
	"strings"

	"amsvault/internal/apperr"
	"amsvault/internal/appcopy"
	"amsvault/internal/catalog"
	"amsvault/internal/library"
	"amsvault/internal/store"
)

var bookmarkStatuses = []store.BookmarkStatus{
	store.StatusWatching, store.StatusReading, store.StatusCompleted, store.StatusDropped, store.StatusPlan,
}

func parseStatus(s string) (store.BookmarkStatus, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, st := range bookmarkStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	return id, err == nil && id > 0
}

type registerArgs struct {
	name, email, password string
}

// parseRegisterArgs takes the last two words as email and password; the name
// may contain spaces.
func parseRegisterArgs(args string) (registerArgs, error) {
	f := strings.Fields(args)
	if len(f) < 3 {
		return registerArgs{}, apperr.Validation(appcopy.Copy.Prompts.RegisterUsage)
	}
	n := len(f)
	return registerArgs{name: strings.Join(f[:n-2], " "), email: f[n-2], password: f[n-1]}, nil
}

func parseLoginArgs(args string) (email, password string, err error) {
	f := strings.Fields(args)
	if len(f) != 2 {
		return "", "", apperr.Validation(appcopy.Copy.Prompts.LoginUsage)
	}
	return f[0], f[1], nil
}

// parseSearchArgs reads an optional leading category. A single word is always
// the query, so "/search anime" looks for the title "anime".
func parseSearchArgs(args string) (catalog.Category, string, error) {
	f := strings.Fields(args)
	if len(f) == 0 {
		return "", "", apperr.Validation(appcopy.Copy.Prompts.SearchUsage)
	}
	if len(f) > 1 {
		if c, ok := catalog.ParseCategory(f[0]); ok {
			return c, strings.Join(f[1:], " "), nil
		}
	}
	return catalog.CategoryAll, strings.Join(f, " "), nil
}

// parseFavArgs returns the zero-based result index and an optional status.
func parseFavArgs(args string) (int, store.BookmarkStatus, error) {
	f := strings.Fields(args)
	if len(f) == 0 || len(f) > 2 {
		return 0, "", apperr.Validation(appcopy.Copy.Prompts.FavUsage)
	}
	n, err := strconv.Atoi(f[0])
	if err != nil || n < 1 {
		return 0, "", apperr.Validation(appcopy.Copy.Prompts.FavUsage)
	}
	var status store.BookmarkStatus
	if len(f) == 2 {
		st, ok := parseStatus(f[1])
		if !ok {
			return 0, "", apperr.Validation(fmt.Sprintf("Unknown status %q", f[1]))
		}
		status = st
	}
	return n - 1, status, nil
}

// Tab names accepted by /list.
const (
	tabAnime  = "anime"
	tabManga  = "manga"
	tabSeries = "series"
)

type listArgs struct {
	tab    string
	status store.BookmarkStatus
	name   string
}

// parseListArgs reads an optional tab and status, in either order, followed
// by a name filter.
func parseListArgs(args string) listArgs {
	var out listArgs
	f := strings.Fields(args)
	for len(f) > 0 {
		w := strings.ToLower(f[0])
		if out.tab == "" && (w == tabAnime || w == tabManga || w == tabSeries) {
			out.tab = w
		} else if st, ok := parseStatus(w); ok && out.status == "" {
			out.status = st
		} else {
			break
		}
		f = f[1:]
	}
	out.name = strings.Join(f, " ")
	return out
}

type progressOp struct {
	field  library.Field
	status store.BookmarkStatus
	// op is '=' to set, '+' or '-' to adjust.
	op    byte
	value int
}

func (p progressOp) apply(d *library.ProgressDraft) {
	switch {
	case p.status != "":
		d.SetStatus(p.status)
	case p.op == '=':
		d.Set(p.field, p.value)
	case p.op == '+':
		d.Adjust(p.field, p.value)
	case p.op == '-':
		d.Adjust(p.field, -p.value)
	}
}

// parseProgressArgs parses "id field=value field+=n field-=n status=x".
func parseProgressArgs(args string) (int64, []progressOp, error) {
	usage := apperr.Validation(appcopy.Copy.Prompts.ProgressUsage)
	f := strings.Fields(args)
	if len(f) < 2 {
		return 0, nil, usage
	}
	id, ok := parseID(f[0])
	if !ok {
		return 0, nil, usage
	}

	ops := make([]progressOp, 0, len(f)-1)
	for _, tok := range f[1:] {
		key, value, found := strings.Cut(tok, "=")
		if !found || key == "" || value == "" {
			return 0, nil, usage
		}
		op := byte('=')
		if last := key[len(key)-1]; last == '+' || last == '-' {
			op, key = last, key[:len(key)-1]
		}

		if strings.EqualFold(key, "status") {
			st, ok := parseStatus(value)
			if !ok || op != '=' {
				return 0, nil, apperr.Validation(fmt.Sprintf("Unknown status %q", value))
			}
			ops = append(ops, progressOp{status: st})
			continue
		}

		field, err := library.ParseField(key)
		if err != nil {
			return 0, nil, err
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return 0, nil, apperr.Validation(fmt.Sprintf("%s must be a non-negative number", field))
		}
		ops = append(ops, progressOp{field: field, op: op, value: n})
	}
	return id, ops, nil
}
