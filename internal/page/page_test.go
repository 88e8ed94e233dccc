package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productHTML = `<html><head>
<title>Stabilo Boss</title>
<style>.price { color: red; }</style>
<script>var tracking = "4040404040404";</script>
</head><body>
<h1>Stabilo Boss Textmarker gelb</h1>
<div class="price">2,68 &#8364;</div>
<p>EAN: 4006381333931</p>
<noscript>Bitte JavaScript aktivieren</noscript>
</body></html>`

func TestText_StripsInvisibleContent(t *testing.T) {
	text := Text(productHTML)

	assert.NotContains(t, text, "tracking")
	assert.NotContains(t, text, "color: red")
	assert.NotContains(t, text, "JavaScript aktivieren")
	assert.Contains(t, text, "Stabilo Boss Textmarker gelb")
	assert.Contains(t, text, "EAN: 4006381333931")
}

func TestText_BlockElementsBreakLines(t *testing.T) {
	text := Text(`<div>Produktname</div><div>2,68 &#8364;</div><div>Warenkorb</div>`)

	assert.Equal(t, "Produktname\n2,68 €\nWarenkorb", text)
}

func TestText_DropsBlankLines(t *testing.T) {
	text := Text(`<div>  </div><p>eins</p><div></div><p>zwei</p>`)

	assert.Equal(t, "eins\nzwei", text)
}

func TestFlatten(t *testing.T) {
	flat := Flatten(`<div>EAN:</div><div> 4006381333931 </div>`)

	assert.Equal(t, "EAN: 4006381333931", flat)
}

func TestJSONLDBlocks(t *testing.T) {
	src := `<html><head>
<script type="application/ld+json">{"@type":"Product","gtin13":"4006381333931"}</script>
<script type="text/javascript">ignored()</script>
</head><body></body></html>`

	blocks := JSONLDBlocks(src)

	require.Len(t, blocks, 1)
	assert.Contains(t, blocks[0], "4006381333931")
}

func TestPresent_InVisibleText(t *testing.T) {
	assert.True(t, Present("4006381333931", "", "EAN: 4006381333931"))
}

func TestPresent_InDocumentText(t *testing.T) {
	assert.True(t, Present("4006381333931", productHTML, ""))
}

func TestPresent_InJSONLDOnly(t *testing.T) {
	src := `<html><body><p>Stabilo Boss</p>
<script type="application/ld+json">{"gtin13":"4006381333931"}</script>
</body></html>`

	assert.True(t, Present("4006381333931", src, "Stabilo Boss"))
}

func TestPresent_AbsentIdentifier(t *testing.T) {
	src := `<html><body><p>Ein ganz anderes Produkt</p></body></html>`

	assert.False(t, Present("4006381333931", src, "Ein ganz anderes Produkt"))
}

func TestPresent_NoPartialMatch(t *testing.T) {
	// A different identifier sharing a prefix must not satisfy the gate.
	src := `<html><body><p>EAN: 4006381333948</p></body></html>`

	assert.False(t, Present("4006381333931", src, "EAN: 4006381333948"))
}

func TestPresent_EmptyIdentifier(t *testing.T) {
	assert.False(t, Present("", productHTML, "anything"))
}
