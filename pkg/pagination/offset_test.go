package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOffsetRequest_Normalize(t *testing.T) {
	tests := []struct {
		name       string
		in         OffsetRequest
		want       OffsetRequest
		wantOffset int
	}{
		{name: "defaults", in: OffsetRequest{}, want: OffsetRequest{Page: 1, Size: PageDefaultSize}, wantOffset: 0},
		{name: "clamped size", in: OffsetRequest{Page: 3, Size: 5000}, want: OffsetRequest{Page: 3, Size: PageMaxSize}, wantOffset: 2000},
		{name: "negative page", in: OffsetRequest{Page: -4, Size: 10}, want: OffsetRequest{Page: 1, Size: 10}, wantOffset: 0},
		{name: "explicit", in: OffsetRequest{Page: 2, Size: 10}, want: OffsetRequest{Page: 2, Size: 10}, wantOffset: 10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.in
			req.Normalize()
			assert.Equal(t, tc.want, req)
			assert.Equal(t, tc.wantOffset, req.Offset())
		})
	}
}

func TestNewOffsetResult(t *testing.T) {
	res := NewOffsetResult([]int{1, 2}, 5, OffsetRequest{Page: 1, Size: 2})
	assert.True(t, res.HasMore)

	res = NewOffsetResult([]int{5}, 5, OffsetRequest{Page: 3, Size: 2})
	assert.False(t, res.HasMore)

	empty := NewOffsetResult[int](nil, 0, OffsetRequest{Page: 1, Size: 2})
	assert.NotNil(t, empty.Items)
}
