package typeparser

import (
	"fmt"
	"io"
	"strings"

	"ctypereader/utils"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TypeDef is a registered struct or union.
type TypeDef struct {
	Name    string  `json:"name" yaml:"name"`
	Size    int     `json:"size" yaml:"size"`
	Members []Field `json:"members" yaml:"members"`
}

type EnumDef struct {
	Name    string       `json:"name" yaml:"name"`
	Members []EnumMember `json:"members" yaml:"members"`
}

type Constant struct {
	Name  string `json:"name" yaml:"name"`
	Value int64  `json:"value" yaml:"value"`
}

// Snapshot is a name-ordered copy of a Registry, ready to be written out.
type Snapshot struct {
	Constants []Constant `json:"constants" yaml:"constants"`
	Structs   []TypeDef  `json:"structs" yaml:"structs"`
	Unions    []TypeDef  `json:"unions" yaml:"unions"`
	Enums     []EnumDef  `json:"enums" yaml:"enums"`
}

func (_this *Registry) Snapshot() *Snapshot {
	snap := &Snapshot{
		Constants: make([]Constant, 0, len(_this.constants)),
		Structs:   make([]TypeDef, 0, len(_this.structs)),
		Unions:    make([]TypeDef, 0, len(_this.unions)),
		Enums:     make([]EnumDef, 0, len(_this.enums)),
	}
	for _, name := range _this.ConstantNames() {
		snap.Constants = append(snap.Constants, Constant{Name: name, Value: _this.constants[name]})
	}
	for _, name := range _this.StructNames() {
		snap.Structs = append(snap.Structs, TypeDef{Name: name, Size: _this.sizes[name], Members: _this.structs[name]})
	}
	for _, name := range _this.UnionNames() {
		snap.Unions = append(snap.Unions, TypeDef{Name: name, Size: _this.sizes[name], Members: _this.unions[name]})
	}
	for _, name := range _this.EnumNames() {
		snap.Enums = append(snap.Enums, EnumDef{Name: name, Members: _this.enums[name]})
	}
	return snap
}

func (_this *Snapshot) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(_this, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func (_this *Snapshot) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(_this); err != nil {
		return err
	}
	return enc.Close()
}

// WriteText writes the snapshot as a C header, with sizes in comments.
func (_this *Snapshot) WriteText(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString("#pragma once\n\n")

	for _, c := range _this.Constants {
		sb.WriteString(fmt.Sprintf("#define %s %d\n", c.Name, c.Value))
	}
	if len(_this.Constants) > 0 {
		sb.WriteString("\n")
	}

	for _, e := range _this.Enums {
		sb.WriteString(fmt.Sprintf("enum %s : %s {\n", e.Name, utils.GetIntType(utils.IntSize, true)))
		for _, m := range e.Members {
			sb.WriteString(fmt.Sprintf("\t%s = 0x%X,\n", m.Label, uint32(m.Value)))
		}
		sb.WriteString("};\n\n")
	}

	writeTypeDef := func(kind string, def TypeDef) {
		sb.WriteString(fmt.Sprintf("//size: %d\n", def.Size))
		sb.WriteString(fmt.Sprintf("%s %s {\n", kind, def.Name))
		for _, m := range def.Members {
			switch {
			case m.IsPadding() && m.Size > 1:
				sb.WriteString(fmt.Sprintf("\t%s %s[%d]; // %d\n", m.TypeName, m.Name, m.Size, m.Size))
			case m.Name == "":
				sb.WriteString(fmt.Sprintf("\t%s; // %d\n", m.TypeName, m.Size))
			default:
				sb.WriteString(fmt.Sprintf("\t%s; // %d\n", m, m.Size))
			}
		}
		sb.WriteString("};\n\n")
	}
	for _, def := range _this.Structs {
		writeTypeDef("struct", def)
	}
	for _, def := range _this.Unions {
		writeTypeDef("union", def)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
