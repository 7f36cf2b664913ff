package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/wippyai/rna/schema"
)

// openSnapshot loads a schema file and picks the snapshot for the --at
// version, or the first one.
func openSnapshot(path, at string) (*schema.Snapshot, error) {
	bundle, err := schema.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if at != "" {
		return bundle.Find(at)
	}
	snaps := bundle.Snapshots()
	if len(snaps) == 0 {
		return nil, fmt.Errorf("%s: no snapshots", path)
	}
	if len(snaps) > 1 {
		log.Warn("schema holds several snapshots, using the first",
			zap.String("file", path),
			zap.String("version", snaps[0].Version))
	}
	return snaps[0], nil
}

func inspectCommand(c *cli.Context) error {
	if err := usageError(c, 1); err != nil {
		return err
	}
	snap, err := openSnapshot(c.Args().First(), c.String("at"))
	if err != nil {
		return err
	}

	names := []string(c.Args().Tail())
	if len(names) == 0 {
		names = snap.Names()
	}

	st := newStyles(isTerminal(os.Stdout))
	fmt.Fprintln(os.Stdout, st.title.Render(fmt.Sprintf("snapshot %s", snap.Version))+" "+
		st.help.Render(snap.Range().String()))
	for _, name := range names {
		e := snap.Entity(name)
		if e == nil {
			return fmt.Errorf("entity %q not found in snapshot %s", name, snap.Version)
		}
		writeEntity(os.Stdout, st, name, e)
	}
	return nil
}

// writeEntity prints a top-level entity and its fields, one line each,
// nested fields indented.
func writeEntity(w io.Writer, st styles, name string, e *schema.Entity) {
	fmt.Fprintf(w, "\n%s %s\n", st.name.Render(name), st.ctype.Render(entityShape(e)))
	writeFields(w, st, e, 1)
}

func writeFields(w io.Writer, st styles, e *schema.Entity, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, fname := range e.FieldNames() {
		f := e.Fields[fname]
		fmt.Fprintf(w, "%s%s %s %s\n", indent,
			st.offset.Render(fmt.Sprintf("+%-4d", f.Offset)),
			st.name.Render(fname),
			st.ctype.Render(entityShape(f)))
		writeFields(w, st, f, depth+1)
	}
}

// entityShape renders an entity as a C-like type with its storage size.
func entityShape(e *schema.Entity) string {
	switch e.Kind {
	case schema.KindPointer:
		return fmt.Sprintf("%s* (%d bytes)", e.CType, e.Size)
	case schema.KindArray:
		return fmt.Sprintf("%s[%d] (%d bytes)", e.CType, e.Count, e.Storage())
	case schema.KindStruct:
		return fmt.Sprintf("struct %s (%d bytes)", e.CType, e.Size)
	}
	return fmt.Sprintf("%s (%d bytes)", e.CType, e.Size)
}

func validateCommand(c *cli.Context) error {
	if err := usageError(c, 1); err != nil {
		return err
	}
	path := c.Args().First()
	bundle, err := schema.LoadFile(path)
	if err != nil {
		return err
	}

	st := newStyles(isTerminal(os.Stdout))
	var failed int
	for _, snap := range bundle.Snapshots() {
		if err := schema.Validate(snap); err != nil {
			failed++
			fmt.Fprintf(os.Stdout, "%s %s\n", st.err.Render("FAIL"), snap.Version)
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(os.Stdout, "  %s\n", line)
			}
			continue
		}
		fmt.Fprintf(os.Stdout, "%s %s %s (%d entities)\n",
			st.ok.Render("ok"), snap.Version, st.help.Render(snap.Range().String()), snap.Len())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d snapshots failed validation", failed, bundle.Len())
	}
	return nil
}

func findCommand(c *cli.Context) error {
	if err := usageError(c, 2); err != nil {
		return err
	}
	bundle, err := schema.LoadFile(c.Args().First())
	if err != nil {
		return err
	}
	snap, err := bundle.Find(c.Args().Get(1))
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s %s\n", snap.Version, snap.Range())
	return nil
}

func mergeCommand(c *cli.Context) error {
	if err := usageError(c, 1); err != nil {
		return err
	}

	var snaps []*schema.Snapshot
	for _, path := range c.Args() {
		b, err := schema.LoadFile(path)
		if err != nil {
			return err
		}
		log.Debug("loaded schema", zap.String("file", path), zap.Int("snapshots", b.Len()))
		snaps = append(snaps, b.Snapshots()...)
	}
	merged, err := schema.Merge(snaps...)
	if err != nil {
		return err
	}

	out := c.String("out")
	if out == "" {
		return schema.Encode(os.Stdout, merged, schema.FormatYAML)
	}
	format := schema.FormatYAML
	if strings.EqualFold(filepath.Ext(out), ".json") {
		format = schema.FormatJSON
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := schema.Encode(f, merged, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
