package config

import (
	"strings"
	"testing"
)

func TestIndexSettings_Validate(t *testing.T) {
	tests := []struct {
		name     string
		settings IndexSettings
		want     []string // substrings expected in the problems, in order
	}{
		{
			name: "valid schema",
			settings: IndexSettings{
				Name: "products",
				Fields: []IndexField{
					{Name: "title", Type: FieldTypeText},
					{Name: "price", Type: FieldTypeNumber},
				},
			},
			want: nil,
		},
		{
			name:     "empty index name",
			settings: IndexSettings{Name: "  "},
			want:     []string{"index name"},
		},
		{
			name: "duplicate field",
			settings: IndexSettings{
				Name: "products",
				Fields: []IndexField{
					{Name: "title", Type: FieldTypeText},
					{Name: "title", Type: FieldTypeKeyword},
				},
			},
			want: []string{"duplicate field 'title'"},
		},
		{
			name: "unknown field type",
			settings: IndexSettings{
				Name:   "products",
				Fields: []IndexField{{Name: "blob", Type: "binary"}},
			},
			want: []string{"unknown type 'binary'"},
		},
		{
			name: "empty field name",
			settings: IndexSettings{
				Name:   "products",
				Fields: []IndexField{{Name: "   ", Type: FieldTypeText}},
			},
			want: []string{"field name cannot be empty"},
		},
		{
			name: "negative boost",
			settings: IndexSettings{
				Name:   "products",
				Fields: []IndexField{{Name: "title", Type: FieldTypeText, Boost: -1}},
			},
			want: []string{"negative boost"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := tt.settings.Validate()
			if len(problems) != len(tt.want) {
				t.Fatalf("got %d problems %v, want %d", len(problems), problems, len(tt.want))
			}
			for i, want := range tt.want {
				if !strings.Contains(problems[i], want) {
					t.Errorf("problem %d = %q, want it to mention %q", i, problems[i], want)
				}
			}
		})
	}
}

func TestIndexSettings_ApplyDefaults(t *testing.T) {
	settings := IndexSettings{
		Name: "products",
		Fields: []IndexField{
			{Name: "title"},
			{Name: "price", Type: FieldTypeNumber, Boost: 3},
		},
	}
	settings.ApplyDefaults()

	if settings.Fields[0].Type != FieldTypeText {
		t.Errorf("empty type should default to text, got %s", settings.Fields[0].Type)
	}
	if settings.Fields[0].Boost != 1.0 {
		t.Errorf("zero boost should default to 1.0, got %v", settings.Fields[0].Boost)
	}
	if settings.Fields[1].Boost != 3 {
		t.Errorf("explicit boost should be kept, got %v", settings.Fields[1].Boost)
	}
	if settings.Shards != 1 {
		t.Errorf("shards should default to 1, got %d", settings.Shards)
	}
}

func TestIndexSettings_Field(t *testing.T) {
	settings := IndexSettings{
		Name:   "products",
		Fields: []IndexField{{Name: "title", Type: FieldTypeText, Searchable: true}},
	}

	field, ok := settings.Field("title")
	if !ok || !field.Searchable {
		t.Errorf("Field(title) = %+v, %v", field, ok)
	}
	if _, ok := settings.Field("missing"); ok {
		t.Error("Field(missing) should report absence")
	}
}

func TestIndexSettings_SearchableFields(t *testing.T) {
	settings := IndexSettings{
		Name: "products",
		Fields: []IndexField{
			{Name: "title", Type: FieldTypeText, Searchable: true},
			{Name: "price", Type: FieldTypeNumber},
			{Name: "description", Type: FieldTypeText, Searchable: true},
		},
	}
	got := settings.SearchableFields()
	if len(got) != 2 || got[0] != "title" || got[1] != "description" {
		t.Errorf("SearchableFields() = %v", got)
	}
}

func TestFieldType_Orderable(t *testing.T) {
	orderable := map[FieldType]bool{
		FieldTypeNumber:  true,
		FieldTypeDate:    true,
		FieldTypeText:    false,
		FieldTypeKeyword: false,
		FieldTypeBoolean: false,
		FieldTypeArray:   false,
		FieldTypeGeo:     false,
	}
	for ft, want := range orderable {
		if got := ft.Orderable(); got != want {
			t.Errorf("%s.Orderable() = %v, want %v", ft, got, want)
		}
	}
}
