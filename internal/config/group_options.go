package config

// groupOptions holds every option that applies at the group level (and,
// since the root carries defaults for every level, at the root and date
// levels too). Spec §3 "GroupConfig".
type groupOptions struct {
	whiteBalance        option[WhiteBalance]
	chromaticAberration option[ChromaticAberration]
	medianFilter        option[int]
	darkFrame           option[string]
	flipRotate          option[FlipRotate]
	includePhotos       option[StringSet]
	excludePhotos       option[StringSet]
	thumbnailLocation   option[ThumbnailLocation]
	thumbnailPath       option[string]
	useEmbeddedThumb    option[bool]
	thumbnailResize     option[float64]
	thumbnailQuality    option[int]
}

func defaultGroupOptions() groupOptions {
	var g groupOptions
	g.whiteBalance.set(WhiteBalance{Kind: WhiteBalanceDefault})
	g.chromaticAberration.set(ChromaticAberration{})
	g.medianFilter.set(0)
	g.darkFrame.set("")
	g.flipRotate.set(FlipRotateNone)
	g.includePhotos.set(NewStringSet())
	g.excludePhotos.set(NewStringSet())
	g.thumbnailLocation.set(ThumbLocationGroup)
	g.thumbnailPath.set("thumbnails")
	g.useEmbeddedThumb.set(false)
	g.thumbnailResize.set(1.0)
	g.thumbnailQuality.set(85)
	return g
}
