package provision

const (
	ExampleVocab  = "example_vocab"
	GenreVocab    = "genre_vocab"
	ComposerVocab = "composer_vocab"
)

// Examples returns Specs of the example Vocabularies.
func Examples() []Spec {
	return []Spec{
		{Name: ExampleVocab, Terms: []string{"vocab-tag-example-1", "vocab-tag-example-2"}},
		{Name: GenreVocab, Terms: []string{"jazz", "soul"}},
		{Name: ComposerVocab, Terms: []string{"bach", "beethoven", "mozart"}},
	}
}
