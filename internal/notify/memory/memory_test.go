package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mintoswatch/docwatch/internal/docwatch"
)

func TestNotifierRecordsAndCopies(t *testing.T) {
	t.Parallel()

	n := New()

	require.NoError(t, n.Publish(context.Background(), docwatch.Notification{ScanID: "s1", Company: "wowwo"}))
	require.NoError(t, n.Publish(context.Background(), docwatch.Notification{ScanID: "s1", Company: "iuvo"}))

	got := n.Notifications()
	require.Len(t, got, 2)
	require.Equal(t, "wowwo", got[0].Company)

	got[0].Company = "modified"
	require.Equal(t, "wowwo", n.Notifications()[0].Company)
}
