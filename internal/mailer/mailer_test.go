package mailer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingCreatedMessage(t *testing.T) {
	msg := listingCreatedMessage("noreply@estate.io", "alice@x.io", "Sunny house")

	assert.Equal(t, []string{"alice@x.io"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"New Listing Created"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Your listing 'Sunny house' has been created successfully.")
}
