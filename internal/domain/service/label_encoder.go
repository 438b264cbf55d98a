package service

import "fmt"

// Encoding is the result of encoding one categorical value. Fallback is set
// when the value was unknown to the encoder and Code is the first class.
type Encoding struct {
	Code     int
	Fallback bool
}

// LabelEncoder maps category strings to the integer codes fitted at training
// time. A class's code is its position in the fitted class list.
type LabelEncoder struct {
	index   map[string]int
	classes []string
}

// NewLabelEncoder builds an encoder from the fitted class list.
func NewLabelEncoder(classes []string) (*LabelEncoder, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("label encoder needs at least one class")
	}
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("duplicate class %q", c)
		}
		index[c] = i
	}
	return &LabelEncoder{
		index:   index,
		classes: append([]string(nil), classes...),
	}, nil
}

// Encode never fails: unseen values map to code 0 with Fallback set.
func (e *LabelEncoder) Encode(value string) Encoding {
	if code, ok := e.index[value]; ok {
		return Encoding{Code: code}
	}
	return Encoding{Code: 0, Fallback: true}
}

// Classes returns the fitted classes in code order.
func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}
