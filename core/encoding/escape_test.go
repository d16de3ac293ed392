package encoding

import "testing"

func TestEscapeXMLText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Salmonella spp.", "Salmonella spp."},
		{"pH < 4.5 & aw > 0.95", "pH &lt; 4.5 &amp; aw &gt; 0.95"},
		{`"quoted"`, `"quoted"`},
		{"&amp;", "&amp;amp;"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := EscapeXMLText(tt.input); got != tt.want {
			t.Errorf("EscapeXMLText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestEscapeXMLAttr(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"log10(count/g)", "log10(count/g)"},
		{`say "hi"`, "say &quot;hi&quot;"},
		{"a<b", "a&lt;b"},
	}

	for _, tt := range tests {
		if got := EscapeXMLAttr(tt.input); got != tt.want {
			t.Errorf("EscapeXMLAttr(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
