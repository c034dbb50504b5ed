package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "The Supplier shall deliver goods.", "The Supplier shall deliver goods."},
		{"tags removed", "<p>The <b>Supplier</b> shall<br/> deliver.</p>", "The Supplier shall deliver."},
		{"tag with attributes", `<span class="x" data-id='1'>Notice</span> period`, "Notice period"},
		{"known entities decoded", "Fees &amp; costs &mdash; &euro;100 &hellip;", "Fees & costs — €100 ..."},
		{"section sign", "&sect; 4.2 applies", "§ 4.2 applies"},
		{"unknown named entity dropped", "Term&zwnj;ination", "Termination"},
		{"numeric entity dropped", "Party&#8217;s obligations &#x2014; all", "Partys obligations all"},
		{"apostrophe entity", "Party&#39;s duty", "Party's duty"},
		{"nbsp collapses", "a&nbsp;&nbsp; b", "a b"},
		{"whitespace collapsed and trimmed", "  line one\n\n\tline two  ", "line one line two"},
		{"escaped markup does not survive", "&lt;script&gt;alert(1)&lt;/script&gt; text", "alert(1) text"},
		{"double-escaped entity fully resolved", "&amp;amp; &amp;lt;i&amp;gt;x", "& x"},
		{"lone angle bracket kept", "price < cap", "price < cap"},
		{"escaped comparison operators kept", "fee &lt; 5 and term &gt; 3 years", "fee < 5 and term > 3 years"},
		{"raw comparison operators kept", "if fee < 5 and term > 3 then", "if fee < 5 and term > 3 then"},
		{"comment removed", "keep <!-- drafting note --> this", "keep this"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"<div>Hello &amp; goodbye</div>",
		"&lt;b&gt;bold&lt;/b&gt;",
		"&amp;lt;&amp;gt;",
		"&amp;amp;amp;amp;",
		"a < b > c",
		"fee &lt; 5 and term &gt; 3 years",
		"&lt;5 &amp;&amp; x&gt;2",
		"<<nested>> tags>",
		"Fee: &pound;5 &times; 3 &#169; &unknown; &",
		"tab\tand\nnewline\r\n and nbsp",
		"&lt;&lt;b&gt;&gt;",
		"Company&rsquo;s &ldquo;sole discretion&rdquo;",
	}

	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		assert.Equal(t, once, twice, "Clean not idempotent for %q", in)
		assert.NotRegexp(t, tagPattern, once)
		assert.NotRegexp(t, entityPattern, once)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseWhitespace(" a\n\nb\t c "))
	assert.Equal(t, "", CollapseWhitespace("\n\t "))
}
