package tempmap

// Pass bundles the parameters of both passes for one draw.
type Pass struct {
	Field     FieldParams
	Composite CompositeParams
}

// Backend executes the two rendering passes on some device. The Renderer
// owns its backend exclusively and calls it from a single goroutine.
//
// Accumulate must leave a complete field before it returns; Composite reads
// that field. Resize invalidates field contents. Resources acquired by
// Resize and SetRamp are released on replacement and by Dispose.
type Backend interface {
	// Supported reports whether the device offers what both passes need.
	Supported() bool
	// Resize reallocates the accumulation storage at fieldW x fieldH for a
	// surface of surfaceW x surfaceH. On error the previous storage stays.
	Resize(surfaceW, surfaceH, fieldW, fieldH int) error
	// SetRamp replaces the color ramp resource. nil releases it.
	SetRamp(r *ColorRamp)
	// Accumulate clears the field and runs pass 1.
	Accumulate(points []NormalizedPoint, pass *Pass)
	// Composite runs pass 2 onto the display surface.
	Composite(pass *Pass)
	// ReadPixels copies the display surface as RGBA8 into dst, which must
	// hold 4*surfaceW*surfaceH bytes.
	ReadPixels(dst []byte)
	// Dispose releases every device resource.
	Dispose()
}
