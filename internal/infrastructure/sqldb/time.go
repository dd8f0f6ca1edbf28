package sqldb

import (
	"fmt"
	"time"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
}

// timeDest scans timestamps that drivers may hand back as time.Time, text
// or unix seconds. Values without a zone are UTC.
type timeDest struct {
	dst *time.Time
}

func (d timeDest) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d.dst = v.UTC()
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case int64:
		*d.dst = time.Unix(v, 0).UTC()
		return nil
	case nil:
		*d.dst = time.Time{}
		return nil
	default:
		return fmt.Errorf("sqldb: cannot scan %T into time", src)
	}
}

func (d timeDest) parse(s string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*d.dst = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("sqldb: unrecognised timestamp %q", s)
}
