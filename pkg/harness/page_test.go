package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const attributePage = `<!DOCTYPE html>
<html>
<head><title>Dokimion</title><style>.red{color:red}</style></head>
<body>
  <script>window.app = {};</script>
  <div class="modal-dialog">
    <div id="popup">Duplicate Attribute</div>
    <h5 class="modal-title">Attribute</h5>
    <form>
      <label>Name</label>
      <input type="text" name="name" value="Color">
    </form>
    <button type="button">Save   changes</button>
  </div>
  <!-- comment -->
</body>
</html>`

func TestVisibleText(t *testing.T) {
	text, err := VisibleText(attributePage)
	require.NoError(t, err)

	assert.Equal(t, "Duplicate Attribute\nAttribute\nName\nSave changes", text)
	assert.NotContains(t, text, "window.app")
	assert.NotContains(t, text, "color:red")
	assert.NotContains(t, text, "comment")
}

func TestElementText(t *testing.T) {
	text, found, err := ElementText(attributePage, "popup")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Duplicate Attribute", text)

	_, found, err = ElementText(attributePage, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}
