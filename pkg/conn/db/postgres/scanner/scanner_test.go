package scanner

import "testing"

func TestCamel(t *testing.T) {
	for _, testcase := range []struct {
		given string
		then  string
	}{
		{given: "name", then: "Name"},
		{given: "vocabulary_id", then: "VocabularyId"},
		{given: "created__at", then: "CreatedAt"},
		{given: "_leading", then: "Leading"},
	} {
		t.Run(testcase.given, func(t *testing.T) {
			if actual := camel(testcase.given); actual != testcase.then {
				t.Errorf("camel(%s) = %s, want %s", testcase.given, actual, testcase.then)
			}
		})
	}
}

func TestNew_FieldMapping(t *testing.T) {
	type row struct {
		Id           string `sql:"term_id"`
		Name         string
		VocabularyId string
		hidden       string
	}
	_ = row{}.hidden

	testee := New[row]().(*structScanner[row])

	for column, field := range map[string]string{
		"term_id":       "Id",
		"Name":          "Name",
		"name":          "Name",
		"vocabulary_id": "VocabularyId",
	} {
		idx, ok := testee.fieldFor(column)
		if !ok {
			t.Errorf("column %s is not mapped", column)
			continue
		}
		if actual := reflectName[row](idx); actual != field {
			t.Errorf("column %s is mapped to %s, want %s", column, actual, field)
		}
	}

	if _, ok := testee.fieldFor("hidden"); ok {
		t.Errorf("unexported field should not be mapped")
	}
}

func TestNew_NonStruct(t *testing.T) {
	if _, ok := New[string]().(singleColumn[string]); !ok {
		t.Errorf("string should be scanned as single column")
	}
}
