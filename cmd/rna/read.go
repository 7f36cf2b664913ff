package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/wippyai/rna/memory"
	"github.com/wippyai/rna/schema"
	"github.com/wippyai/rna/transcoder"
)

// maxReadDepth bounds struct nesting when printing, in case a malformed
// schema embeds a struct in itself.
const maxReadDepth = 16

// maxArrayItems is how many array elements read prints before eliding.
const maxArrayItems = 8

func readCommand(c *cli.Context) error {
	if err := usageError(c, 2); err != nil {
		return err
	}
	name := c.String("entity")
	if name == "" {
		return fmt.Errorf("read: --entity is required")
	}
	base, err := parseAddr(c.String("base"))
	if err != nil {
		return fmt.Errorf("read: --base: %w", err)
	}
	addr := base
	if s := c.String("addr"); s != "" {
		if addr, err = parseAddr(s); err != nil {
			return fmt.Errorf("read: --addr: %w", err)
		}
	}

	snap, err := openSnapshot(c.Args().First(), c.String("at"))
	if err != nil {
		return err
	}
	e := snap.Entity(name)
	if e == nil {
		return fmt.Errorf("entity %q not found in snapshot %s", name, snap.Version)
	}

	dump, err := os.ReadFile(c.Args().Get(1))
	if err != nil {
		return err
	}
	log.Debug("mapped dump",
		zap.String("file", c.Args().Get(1)),
		zap.Int("bytes", len(dump)),
		zap.String("base", fmt.Sprintf("%#x", base)))

	tc := transcoder.New(snap, memory.FromBytes(base, dump))
	st := newStyles(isTerminal(os.Stdout))
	fmt.Fprintf(os.Stdout, "%s %s @ %#x\n", st.name.Render(name), st.ctype.Render(entityShape(e)), addr)
	return writeValues(os.Stdout, st, tc, e, addr, 1)
}

func parseAddr(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(s), 0, 64)
}

// writeValues prints every field of the struct entity e stored at addr.
func writeValues(w io.Writer, st styles, tc *transcoder.Transcoder, e *schema.Entity, addr uint64, depth int) error {
	if depth > maxReadDepth {
		return fmt.Errorf("struct nesting deeper than %d at %s", maxReadDepth, e.Name)
	}
	indent := strings.Repeat("  ", depth)
	for _, fname := range e.FieldNames() {
		f := e.Fields[fname]
		at := addr + uint64(f.Offset)
		prefix := fmt.Sprintf("%s%s %s", indent, st.offset.Render(fmt.Sprintf("+%-4d", f.Offset)), st.name.Render(fname))

		if f.Kind == schema.KindStruct {
			fmt.Fprintf(w, "%s %s\n", prefix, st.ctype.Render(entityShape(f)))
			nested := f
			if len(f.Fields) == 0 {
				if top := tc.Snapshot().Entity(f.CType); top != nil {
					nested = top
				}
			}
			if err := writeValues(w, st, tc, nested, at, depth+1); err != nil {
				return err
			}
			continue
		}

		value, err := formatField(tc, f, at)
		if err != nil {
			value = st.err.Render(err.Error())
		} else {
			value = st.value.Render(value)
		}
		fmt.Fprintf(w, "%s = %s %s\n", prefix, value, st.help.Render(f.CType))
	}
	return nil
}

func formatField(tc *transcoder.Transcoder, f *schema.Entity, addr uint64) (string, error) {
	switch f.Kind {
	case schema.KindPointer:
		var p uint64
		var err error
		if f.Size == 4 {
			var v uint32
			v, err = transcoder.DecodeAs[uint32](tc, f, addr)
			p = uint64(v)
		} else {
			p, err = transcoder.DecodeAs[uint64](tc, f, addr)
		}
		if err != nil {
			return "", err
		}
		if p == 0 {
			return "null", nil
		}
		return fmt.Sprintf("%#x", p), nil

	case schema.KindArray:
		return formatArray(tc, f, addr)
	}
	return formatPrimitive(tc, f, addr)
}

func formatPrimitive(tc *transcoder.Transcoder, f *schema.Entity, addr uint64) (string, error) {
	var v any
	var err error
	switch {
	case f.IsFloat() && f.Size == 4:
		v, err = transcoder.DecodeAs[float32](tc, f, addr)
	case f.IsFloat() && f.Size == 8:
		v, err = transcoder.DecodeAs[float64](tc, f, addr)
	case f.IsInteger() && f.IsSigned():
		switch f.Size {
		case 1:
			v, err = transcoder.DecodeAs[int8](tc, f, addr)
		case 2:
			v, err = transcoder.DecodeAs[int16](tc, f, addr)
		case 4:
			v, err = transcoder.DecodeAs[int32](tc, f, addr)
		default:
			v, err = transcoder.DecodeAs[int64](tc, f, addr)
		}
	case f.IsInteger():
		switch f.Size {
		case 1:
			v, err = transcoder.DecodeAs[uint8](tc, f, addr)
		case 2:
			v, err = transcoder.DecodeAs[uint16](tc, f, addr)
		case 4:
			v, err = transcoder.DecodeAs[uint32](tc, f, addr)
		default:
			v, err = transcoder.DecodeAs[uint64](tc, f, addr)
		}
	default:
		raw, err := readRaw(tc, addr, f.Size)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("% x", raw), nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprint(v), nil
}

// formatArray prints char buffers as strings and numeric arrays element by
// element; arrays of structs and anything else are shown as bytes.
func formatArray(tc *transcoder.Transcoder, f *schema.Entity, addr uint64) (string, error) {
	elem := &schema.Entity{Kind: schema.KindPrimitive, CType: f.CType, Size: f.Size}
	if tc.Snapshot().Entity(f.CType) != nil {
		elem.Kind = schema.KindStruct
	}
	switch {
	case f.Size == 1 && strings.Contains(f.CType, "char"):
		raw, err := readRaw(tc, addr, f.Storage())
		if err != nil {
			return "", err
		}
		if i := bytes.IndexByte(raw, 0); i >= 0 {
			raw = raw[:i]
		}
		return strconv.Quote(string(raw)), nil
	case elem.IsFloat() && f.Size == 4:
		return arrayItems[float32](tc, f, addr)
	case elem.IsFloat() && f.Size == 8:
		return arrayItems[float64](tc, f, addr)
	case elem.IsInteger() && elem.IsSigned():
		switch f.Size {
		case 1:
			return arrayItems[int8](tc, f, addr)
		case 2:
			return arrayItems[int16](tc, f, addr)
		case 4:
			return arrayItems[int32](tc, f, addr)
		default:
			return arrayItems[int64](tc, f, addr)
		}
	case elem.IsInteger():
		switch f.Size {
		case 1:
			return arrayItems[uint8](tc, f, addr)
		case 2:
			return arrayItems[uint16](tc, f, addr)
		case 4:
			return arrayItems[uint32](tc, f, addr)
		default:
			return arrayItems[uint64](tc, f, addr)
		}
	}

	raw, err := readRaw(tc, addr, min(f.Storage(), 32))
	if err != nil {
		return "", err
	}
	if f.Storage() > len(raw) {
		return fmt.Sprintf("[% x ...]", raw), nil
	}
	return fmt.Sprintf("[% x]", raw), nil
}

// arrayItems decodes up to maxArrayItems elements through an array view.
func arrayItems[T any](tc *transcoder.Transcoder, f *schema.Entity, addr uint64) (string, error) {
	a, err := transcoder.ArrayOf[T](tc, f, addr)
	if err != nil {
		return "", err
	}
	n := min(a.Len(), maxArrayItems)
	items := make([]string, 0, n+1)
	for i := range n {
		v, err := a.At(i)
		if err != nil {
			return "", err
		}
		items = append(items, fmt.Sprint(v))
	}
	if a.Len() > n {
		items = append(items, fmt.Sprintf("... %d more", a.Len()-n))
	}
	return "[" + strings.Join(items, " ") + "]", nil
}

func readRaw(tc *transcoder.Transcoder, addr uint64, n int) ([]byte, error) {
	raw := make([]byte, n)
	if err := tc.Memory().Read(addr, raw); err != nil {
		return nil, err
	}
	return raw, nil
}
