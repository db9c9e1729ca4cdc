// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command arrjson-ls prints the fields, dictionaries and batch sizes of an
// Arrow integration JSON file without decoding its data.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/docopt/docopt-go"
	"github.com/tidwall/gjson"
	"golang.org/x/xerrors"
)

const usage = `Arrow integration JSON lister.
Usage:
  arrjson-ls -h | --help
  arrjson-ls [--dictionaries] [--metadata] <file>
Options:
  -h --help        Show this screen.
  --dictionaries   List dictionary batches.
  --metadata       Print key-value metadata of the schema and its fields.`

type config struct {
	Help         bool `docopt:"--help"`
	Dictionaries bool
	Metadata     bool
	File         string
}

func main() {
	opts, _ := docopt.ParseDoc(usage)
	var cfg config
	if err := opts.Bind(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	raw, err := os.ReadFile(cfg.File)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error reading file:", err)
		os.Exit(1)
	}

	if err := list(os.Stdout, raw, cfg); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func list(w io.Writer, raw []byte, cfg config) error {
	if !gjson.ValidBytes(raw) {
		return xerrors.New("file is not valid JSON")
	}
	doc := gjson.ParseBytes(raw)

	fields := doc.Get("schema.fields")
	if !fields.IsArray() {
		return xerrors.New(`document has no "schema.fields" array`)
	}

	fmt.Fprintf(w, "Fields: %d\n", len(fields.Array()))
	if cfg.Metadata {
		printMetadata(w, doc.Get("schema.metadata"), "  ")
	}
	for _, f := range fields.Array() {
		printField(w, f, "  ", cfg.Metadata)
	}

	if cfg.Dictionaries {
		dicts := doc.Get("dictionaries").Array()
		fmt.Fprintf(w, "Dictionaries: %d\n", len(dicts))
		for _, d := range dicts {
			fmt.Fprintf(w, "  id=%d count=%d\n", d.Get("id").Int(), d.Get("data.count").Int())
		}
	}

	batches := doc.Get("batches")
	if !batches.IsArray() {
		return xerrors.New(`document has no "batches" array`)
	}
	var total int64
	fmt.Fprintf(w, "Batches: %d\n", len(batches.Array()))
	for i, b := range batches.Array() {
		n := b.Get("count").Int()
		total += n
		fmt.Fprintf(w, "  batch %d: %d rows\n", i, n)
	}
	fmt.Fprintf(w, "Rows: %d\n", total)
	return nil
}

func printField(w io.Writer, f gjson.Result, indent string, withMetadata bool) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s: %s", indent, f.Get("name").String(), typeName(f.Get("type")))
	if dict := f.Get("dictionary"); dict.Exists() {
		fmt.Fprintf(&b, " dictionary(id=%d, index=%s", dict.Get("id").Int(), typeName(dict.Get("indexType")))
		if dict.Get("isOrdered").Bool() {
			b.WriteString(", ordered")
		}
		b.WriteString(")")
	}
	if f.Get("nullable").Bool() {
		b.WriteString(" nullable")
	}
	fmt.Fprintln(w, b.String())

	if withMetadata {
		printMetadata(w, f.Get("metadata"), indent+"  ")
	}
	for _, c := range f.Get("children").Array() {
		printField(w, c, indent+"  ", withMetadata)
	}
}

func printMetadata(w io.Writer, md gjson.Result, indent string) {
	md.ForEach(func(_, kv gjson.Result) bool {
		fmt.Fprintf(w, "%s%s = %s\n", indent, kv.Get("key").String(), kv.Get("value").String())
		return true
	})
}

// typeName renders a type node compactly, e.g. int64, uint8, timestamp[ns, UTC].
func typeName(t gjson.Result) string {
	name := t.Get("name").String()
	switch name {
	case "int":
		prefix := "uint"
		if t.Get("isSigned").Bool() {
			prefix = "int"
		}
		return fmt.Sprintf("%s%d", prefix, t.Get("bitWidth").Int())
	case "floatingpoint":
		return "float[" + strings.ToLower(t.Get("precision").String()) + "]"
	case "decimal":
		width := t.Get("bitWidth").Int()
		if width == 0 {
			width = 128
		}
		return fmt.Sprintf("decimal%d(%d, %d)", width, t.Get("precision").Int(), t.Get("scale").Int())
	case "fixedsizebinary":
		return fmt.Sprintf("fixedsizebinary[%d]", t.Get("byteWidth").Int())
	case "fixedsizelist":
		return fmt.Sprintf("fixedsizelist[%d]", t.Get("listSize").Int())
	case "timestamp":
		if tz := t.Get("timezone"); tz.Exists() {
			return fmt.Sprintf("timestamp[%s, %s]", strings.ToLower(t.Get("unit").String()), tz.String())
		}
		fallthrough
	case "date", "time", "duration", "interval":
		return fmt.Sprintf("%s[%s]", name, strings.ToLower(t.Get("unit").String()))
	case "union":
		return fmt.Sprintf("union[%s]%v", strings.ToLower(t.Get("mode").String()), t.Get("typeIds").Value())
	}
	return name
}
