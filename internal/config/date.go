package config

import "sync"

// DateConfig is a child of RootConfig, keyed by date-dir name.
// Created on demand when the scanner encounters that directory or a
// date-level YAML file is loaded; it snapshots nothing from the parent
// (pull model, see option.go) -- it simply defers to the parent for any
// field it hasn't overridden itself.
type DateConfig struct {
	mu sync.RWMutex

	groupOptions
	dateOptions

	parent  *RootConfig
	dateDir string
}

func newDateConfig(parent *RootConfig, dateDir string) *DateConfig {
	return &DateConfig{parent: parent, dateDir: dateDir}
}

func (d *DateConfig) DateDir() string { return d.dateDir }

func (d *DateConfig) TruncPath(p string, file bool) string {
	return TruncPath(ScopeDate, d.dateDir, "", p, file)
}

func (d *DateConfig) WhiteBalance() WhiteBalance {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.whiteBalance.get(d.parent.WhiteBalance)
}

func (d *DateConfig) SetWhiteBalance(raw string) error {
	wb, err := ParseWhiteBalance(raw)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.whiteBalance.set(wb)
	return nil
}

func (d *DateConfig) ChromaticAberration() ChromaticAberration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.chromaticAberration.get(d.parent.ChromaticAberration)
}

func (d *DateConfig) SetChromaticAberration(raw string) error {
	ca, err := ParseChromaticAberration(raw)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chromaticAberration.set(ca)
	return nil
}

func (d *DateConfig) MedianFilter() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.medianFilter.get(d.parent.MedianFilter)
}

func (d *DateConfig) SetMedianFilter(n int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.medianFilter.set(n)
	return nil
}

func (d *DateConfig) DarkFrame() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.darkFrame.get(d.parent.DarkFrame)
}

func (d *DateConfig) SetDarkFrame(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.darkFrame.set(path)
}

func (d *DateConfig) FlipRotate() FlipRotate {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.flipRotate.get(d.parent.FlipRotate)
}

func (d *DateConfig) SetFlipRotate(raw string) error {
	fr, err := ParseFlipRotate(raw)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flipRotate.set(fr)
	return nil
}

func (d *DateConfig) ThumbnailLocation() ThumbnailLocation {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.thumbnailLocation.get(d.parent.ThumbnailLocation)
}

func (d *DateConfig) SetThumbnailLocation(raw string) error {
	loc, err := ParseThumbnailLocation(raw)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.thumbnailLocation.set(loc)
	return nil
}

func (d *DateConfig) ThumbnailPath() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.thumbnailPath.get(d.parent.ThumbnailPath)
}

func (d *DateConfig) SetThumbnailPath(p string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.thumbnailPath.set(p)
}

func (d *DateConfig) ThumbnailResizeFactor() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.thumbnailResize.get(d.parent.ThumbnailResizeFactor)
}

func (d *DateConfig) SetThumbnailResizeFactor(f float64) error {
	if f <= 0 || f > 1 {
		return errInvalidResizeFactor(f)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.thumbnailResize.set(f)
	return nil
}

func (d *DateConfig) ThumbnailQuality() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.thumbnailQuality.get(d.parent.ThumbnailQuality)
}

func (d *DateConfig) SetThumbnailQuality(q int) error {
	if q < 0 || q > 100 {
		return errInvalidQuality(q)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.thumbnailQuality.set(q)
	return nil
}

func (d *DateConfig) UseEmbeddedThumbnail() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.useEmbeddedThumb.get(d.parent.UseEmbeddedThumbnail)
}

func (d *DateConfig) SetUseEmbeddedThumbnail(b bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.useEmbeddedThumb.set(b)
}

func (d *DateConfig) IncludePhotos() StringSet {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.includePhotos.get(d.parent.IncludePhotos)
}

func (d *DateConfig) ExcludePhotos() StringSet {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.excludePhotos.get(d.parent.ExcludePhotos)
}

func (d *DateConfig) AddExcludePhotos(paths ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.excludePhotos.set(d.excludePhotos.get(d.parent.ExcludePhotos).Add(paths...))
}

func (d *DateConfig) AddIncludePhotos(paths ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.includePhotos.set(d.includePhotos.get(d.parent.IncludePhotos).Add(paths...))
}

func (d *DateConfig) GroupOrdering() GroupOrdering {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.groupOrdering.get(d.parent.GroupOrdering)
}

func (d *DateConfig) SetGroupOrdering(raw string) error {
	o, err := ParseGroupOrdering(raw)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.groupOrdering.set(o)
	return nil
}

func (d *DateConfig) IncludeGroups() StringSet {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.includeGroups.get(d.parent.IncludeGroups)
}

func (d *DateConfig) ExcludeGroups() StringSet {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.excludeGroups.get(d.parent.ExcludeGroups)
}

func (d *DateConfig) AddIncludeGroups(groups ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.includeGroups.set(d.includeGroups.get(d.parent.IncludeGroups).Add(groups...))
}

func (d *DateConfig) AddExcludeGroups(groups ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.excludeGroups.set(d.excludeGroups.get(d.parent.ExcludeGroups).Add(groups...))
}
