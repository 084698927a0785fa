package extract

import "fmt"

// UnimplementedDecoder is the production RawDecoder extension point: a real
// deployment wires a concrete RAW library here. No such library appears
// anywhere in scope for this pipeline, so this placeholder fails loudly
// instead of pretending to decode anything.
type UnimplementedDecoder struct{}

func (UnimplementedDecoder) Decode(path string) (*RawImage, error) {
	return nil, fmt.Errorf("no RAW decoder configured: wire a production RawDecoder before running against real files (got %q)", path)
}

type unimplementedExifReader struct{}

func (unimplementedExifReader) Read(path string) (*ExifRecord, error) {
	return nil, fmt.Errorf("no EXIF reader configured: wire a production ExifReader before running against real files (got %q)", path)
}

func (unimplementedExifReader) Close() error { return nil }

// UnimplementedExifReaderFactory is the production ExifReaderFactory
// extension point, paired with UnimplementedDecoder.
func UnimplementedExifReaderFactory() (ExifReader, error) {
	return unimplementedExifReader{}, nil
}
