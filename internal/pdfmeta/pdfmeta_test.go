package pdfmeta

import "testing"

func TestFindDOI(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "plain doi in text",
			text: "This article is registered as https://doi.org/10.82044/abc-999 with DataCite.",
			want: "10.82044/abc-999",
		},
		{
			name: "trailing punctuation stripped",
			text: "See 10.82044/abc-999. for details",
			want: "10.82044/abc-999",
		},
		{
			name: "upper case normalized",
			text: "DOI: 10.82044/ABC-999",
			want: "10.82044/abc-999",
		},
		{
			name: "first valid match wins",
			text: "10.82044/first-doi and later 10.82044/second-doi",
			want: "10.82044/first-doi",
		},
		{
			name: "no doi",
			text: "An article about forecast skill with no identifier.",
			want: "",
		},
		{
			name: "slash only at end rejected",
			text: "broken reference 10.82044/",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findDOI(tt.text); got != tt.want {
				t.Errorf("findDOI() = %q, want %q", got, tt.want)
			}
		})
	}
}
