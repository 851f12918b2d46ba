package dashboard

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionImages(t *testing.T) {
	full, sub := PartitionImages([]string{"a_full.png", "b.png"})
	assert.Equal(t, []string{"a_full.png"}, full)
	assert.Equal(t, []string{"b.png"}, sub)

	names := []string{"z_1990.png", "x_full.png", "a_1980.png", "m_full.png"}
	full, sub = PartitionImages(names)
	assert.Equal(t, []string{"x_full.png", "m_full.png"}, full, "input order is kept")
	assert.Equal(t, []string{"z_1990.png", "a_1980.png"}, sub)
	assert.Len(t, append(full, sub...), len(names), "every file lands in exactly one group")

	full, sub = PartitionImages(nil)
	assert.Empty(t, full)
	assert.Empty(t, sub)
}

func TestDirImageLister(t *testing.T) {
	fsys := fstest.MapFS{
		"sector_real/pib_real/pib_real_pib_full.png": {Data: []byte("png")},
		"sector_real/pib_real/pib_real_pib_auge.png": {Data: []byte("png")},
		"sector_real/pib_real/notes.txt":             {Data: []byte("skip")},
		"sector_real/pib_real/nested/inner_full.png": {Data: []byte("skip")},
		"pib_ramas/pib_ramas_full.PNG":               {Data: []byte("png")},
	}
	lister := NewDirImageLister(fsys)

	names, err := lister.ListTableImages(context.Background(), "sector_real", "pib_real")
	require.NoError(t, err)
	assert.Equal(t, []string{"pib_real_pib_auge.png", "pib_real_pib_full.png"}, names)

	names, err = lister.ListTableImages(context.Background(), "", "pib_ramas")
	require.NoError(t, err)
	assert.Equal(t, []string{"pib_ramas_full.PNG"}, names)

	names, err = lister.ListTableImages(context.Background(), "sector_real", "missing")
	require.NoError(t, err)
	assert.Empty(t, names)

	names, err = NewDirImageLister(nil).ListTableImages(context.Background(), "", "x")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestImageURL(t *testing.T) {
	assert.Equal(t, "/assets/charts/sector_real/pib_real/a.png", ImageURL("/assets/charts/", "/sector_real/", "pib_real", "a.png"))
	assert.Equal(t, "/assets/charts/pib_real/a.png", ImageURL("/assets/charts", "", "pib_real", "a.png"))
}

func TestPartitionImagesMatchesTrailingMarkerOnly(t *testing.T) {
	names := []string{
		"empleo_fulltime_empleo_full.png",
		"empleo_fulltime_empleo_auge.png",
		"fullerton_pib_crisis.png",
		"full.svg",
	}
	full, sub := PartitionImages(names)
	assert.Equal(t, []string{"empleo_fulltime_empleo_full.png", "full.svg"}, full)
	assert.Equal(t, []string{"empleo_fulltime_empleo_auge.png", "fullerton_pib_crisis.png"}, sub)

	assert.Equal(t, "pib_real_pib_full.png", FullSeriesImageName("pib_real_pib", ".png"))
	assert.True(t, IsFullSeriesImage(FullSeriesImageName("pib_real_pib", ".png")))
}

func TestImageURLEscapesSegments(t *testing.T) {
	assert.Equal(t,
		"/assets/charts/sector_real/pib_real/pib_real_pib_revoluci%C3%B3n_nacional.png",
		ImageURL("/assets/charts", "sector_real", "pib_real", "pib_real_pib_revolución_nacional.png"))
	assert.Equal(t,
		"/assets/charts/pib_real/a%23b%3Fc.png",
		ImageURL("/assets/charts", "", "pib_real", "a#b?c.png"))
}
