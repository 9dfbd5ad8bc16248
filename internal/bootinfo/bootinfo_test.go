package bootinfo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUsableRegionsFiltersReserved(t *testing.T) {
	info := &Info_t{Regions: []Region_t{
		{BasePage: 0, Pages: 1, Usable: false},
		{BasePage: 1, Pages: 10, Usable: true},
		{BasePage: 100, Pages: 5, Usable: true},
	}}
	usable := info.UsableRegions()
	require.Len(t, usable, 2)
	require.EqualValues(t, 10, usable[0].Pages)
}

func TestTotalUsablePagesSumsOnlyUsableRegions(t *testing.T) {
	info := &Info_t{Regions: []Region_t{
		{Pages: 1, Usable: false},
		{Pages: 2000, Usable: true},
		{Pages: 48, Usable: true},
	}}
	require.Equal(t, 2048, info.TotalUsablePages())
}

func TestFramebufferOptionalNilByDefault(t *testing.T) {
	info := &Info_t{}
	require.Nil(t, info.Framebuffer)
}
