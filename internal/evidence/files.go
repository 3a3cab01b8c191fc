package evidence

import (
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/recaudo/evidence-cli/internal/schema"
	"github.com/recaudo/evidence-cli/internal/table"
)

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return eris.Wrapf(err, "evidence: open %s", src)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return eris.Wrapf(err, "evidence: create %s", dst)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return eris.Wrapf(err, "evidence: copy %s", dst)
	}
	return eris.Wrapf(out.Close(), "evidence: close %s", dst)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// keyEqual compares two identifier values, normalizing float artifacts
// ("1001.0" matches "1001") while keeping leading zeros significant.
func keyEqual(a, b string) bool {
	return table.IdentifierText(a) == table.IdentifierText(b)
}

// filterChannelRows selects new-records rows for one account whose
// effective-channels cell mentions the given channel.
func filterChannelRows(t *table.Table, accountID, channel string) *table.Table {
	acc := t.Column(schema.FieldAccountID)
	chs := t.Column(schema.FieldEffectiveChannels)
	return t.Filter(func(row []string) bool {
		return keyEqual(table.Value(row, acc), accountID) &&
			strings.Contains(table.Value(row, chs), channel)
	})
}
