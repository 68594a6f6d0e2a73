//go:build windows

package capture

import (
	"context"
	"fmt"
	"image"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procGetDC            = user32.NewProc("GetDC")
	procReleaseDC        = user32.NewProc("ReleaseDC")
	procGetSystemMetrics = user32.NewProc("GetSystemMetrics")
	procGetForegroundWin = user32.NewProc("GetForegroundWindow")
	procGetWindowRect    = user32.NewProc("GetWindowRect")

	gdi32                   = windows.NewLazySystemDLL("gdi32.dll")
	procCreateCompatibleDC  = gdi32.NewProc("CreateCompatibleDC")
	procCreateCompatibleBmp = gdi32.NewProc("CreateCompatibleBitmap")
	procSelectObject        = gdi32.NewProc("SelectObject")
	procBitBlt              = gdi32.NewProc("BitBlt")
	procGetDIBits           = gdi32.NewProc("GetDIBits")
	procDeleteObject        = gdi32.NewProc("DeleteObject")
	procDeleteDC            = gdi32.NewProc("DeleteDC")
)

const (
	smXVirtualScreen  = 76
	smYVirtualScreen  = 77
	smCXVirtualScreen = 78
	smCYVirtualScreen = 79

	srcCopy      = 0x00CC0020
	dibRGBColors = 0
	biRGB        = 0
)

type rect struct {
	Left, Top, Right, Bottom int32
}

type bitmapInfoHeader struct {
	Size          uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

// gdiCapturer BitBlts the virtual screen, or the foreground window when
// Magpie compatibility is on.
type gdiCapturer struct {
	magpie bool
}

func newCapturer(opts Options) (Capturer, error) {
	return &gdiCapturer{magpie: opts.MagpieCompatibility}, nil
}

func (c *gdiCapturer) region() (x, y, w, h int32) {
	if c.magpie {
		hwnd, _, _ := procGetForegroundWin.Call()
		if hwnd != 0 {
			var r rect
			ok, _, _ := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&r)))
			if ok != 0 && r.Right > r.Left && r.Bottom > r.Top {
				return r.Left, r.Top, r.Right - r.Left, r.Bottom - r.Top
			}
		}
	}

	vx, _, _ := procGetSystemMetrics.Call(smXVirtualScreen)
	vy, _, _ := procGetSystemMetrics.Call(smYVirtualScreen)
	vw, _, _ := procGetSystemMetrics.Call(smCXVirtualScreen)
	vh, _, _ := procGetSystemMetrics.Call(smCYVirtualScreen)
	return int32(vx), int32(vy), int32(vw), int32(vh)
}

func (c *gdiCapturer) Capture(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x, y, w, h := c.region()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty capture region %dx%d", w, h)
	}

	hdcScreen, _, _ := procGetDC.Call(0)
	if hdcScreen == 0 {
		return nil, fmt.Errorf("GetDC failed")
	}
	defer procReleaseDC.Call(0, hdcScreen)

	hdcMem, _, _ := procCreateCompatibleDC.Call(hdcScreen)
	if hdcMem == 0 {
		return nil, fmt.Errorf("CreateCompatibleDC failed")
	}
	defer procDeleteDC.Call(hdcMem)

	hbmp, _, _ := procCreateCompatibleBmp.Call(hdcScreen, uintptr(w), uintptr(h))
	if hbmp == 0 {
		return nil, fmt.Errorf("CreateCompatibleBitmap failed")
	}
	defer procDeleteObject.Call(hbmp)

	procSelectObject.Call(hdcMem, hbmp)

	ok, _, _ := procBitBlt.Call(
		hdcMem, 0, 0, uintptr(w), uintptr(h),
		hdcScreen, uintptr(x), uintptr(y), srcCopy,
	)
	if ok == 0 {
		return nil, fmt.Errorf("BitBlt failed")
	}

	// Negative height asks for a top-down DIB.
	hdr := bitmapInfoHeader{
		Size:        uint32(unsafe.Sizeof(bitmapInfoHeader{})),
		Width:       w,
		Height:      -h,
		Planes:      1,
		BitCount:    32,
		Compression: biRGB,
	}

	buf := make([]byte, int(w)*int(h)*4)
	lines, _, _ := procGetDIBits.Call(
		hdcMem, hbmp, 0, uintptr(h),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&hdr)),
		dibRGBColors,
	)
	if lines == 0 {
		return nil, fmt.Errorf("GetDIBits failed")
	}

	// DIB pixels are BGRA.
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	for i := 0; i+3 < len(buf); i += 4 {
		img.Pix[i] = buf[i+2]
		img.Pix[i+1] = buf[i+1]
		img.Pix[i+2] = buf[i]
		img.Pix[i+3] = 0xff
	}

	return img, nil
}

func (c *gdiCapturer) Close() error { return nil }
