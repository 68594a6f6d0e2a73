//go:build darwin

package capture

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation
#include <CoreGraphics/CoreGraphics.h>
#include <CoreFoundation/CoreFoundation.h>

static CGImageRef grabMainDisplay(void) {
	return CGDisplayCreateImage(CGMainDisplayID());
}
*/
import "C"
import (
	"context"
	"fmt"
	"image"
	"unsafe"
)

type quartzCapturer struct{}

func newCapturer(_ Options) (Capturer, error) {
	return &quartzCapturer{}, nil
}

func (c *quartzCapturer) Capture(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ref := C.grabMainDisplay()
	if ref == nil {
		return nil, fmt.Errorf("CGDisplayCreateImage failed")
	}
	defer C.CGImageRelease(ref)

	w := int(C.CGImageGetWidth(ref))
	h := int(C.CGImageGetHeight(ref))
	stride := int(C.CGImageGetBytesPerRow(ref))

	data := C.CGDataProviderCopyData(C.CGImageGetDataProvider(ref))
	if data == nil {
		return nil, fmt.Errorf("failed to copy display image data")
	}
	defer C.CFRelease(C.CFTypeRef(data))

	raw := C.GoBytes(unsafe.Pointer(C.CFDataGetBytePtr(data)), C.int(C.CFDataGetLength(data)))

	// Display images come back BGRA with possible row padding.
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := y * stride
		dst := y * img.Stride
		for x := 0; x < w; x++ {
			img.Pix[dst] = raw[src+2]
			img.Pix[dst+1] = raw[src+1]
			img.Pix[dst+2] = raw[src]
			img.Pix[dst+3] = 0xff
			src += 4
			dst += 4
		}
	}

	return img, nil
}

func (c *quartzCapturer) Close() error { return nil }
