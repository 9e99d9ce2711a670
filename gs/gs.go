/*
 * ps2emu - Graphics Synthesizer register/VRAM stub.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package gs stubs the Graphics Synthesizer: it accepts the GIF's register
// writes and the privileged MMIO register file the EE can address directly,
// and performs the PSMCT32/PSMCT16 VRAM writes a GIF IMAGE transfer drives.
// No rasterizer lives here; the pixel pipeline belongs to the GL backend.
package gs

// Transfer directions, the values of the TRXDIR register.
const (
	TRXHostLocal = iota
	TRXLocalHost
	TRXLocalLocal
	TRXNone
)

// bitbltbuf decodes the BITBLTBUF register.
type bitbltbuf uint64

func (b bitbltbuf) DestBase() uint32   { return uint32(b>>32) & 0x3FFF }
func (b bitbltbuf) DestWidth() uint32  { return uint32(b>>48) & 0x3F }
func (b bitbltbuf) DestFormat() uint32 { return uint32(b>>56) & 0x3F }

// trxpos decodes the TRXPOS register.
type trxpos uint64

func (t trxpos) DestX() uint16 { return uint16(t>>32) & 0x7FF }
func (t trxpos) DestY() uint16 { return uint16(t>>48) & 0x7FF }

// trxreg decodes the TRXREG register.
type trxreg uint64

func (t trxreg) Width() uint32  { return uint32(t) & 0xFFF }
func (t trxreg) Height() uint32 { return uint32(t>>32) & 0xFFF }

// GSPRegs is the EE-addressable privileged register file.
type GSPRegs struct {
	Pmode    uint64
	Smode1   uint64
	Smode2   uint64
	Srfsh    uint64
	Synch1   uint64
	Synch2   uint64
	Syncv    uint64
	Dispfb1  uint64
	Display1 uint64
	Dispfb2  uint64
	Display2 uint64
	Extbuf   uint64
	Extdata  uint64
	Extwrite uint64
	Bgcolor  uint64
	CSR      uint64
	IMR      uint64
	Busdir   uint64
	Siglblid uint64
}

// GS owns VRAM and the register state the GIF and EE touch.
type GS struct {
	Priv GSPRegs

	Prim     uint64
	RGBAQ    uint64
	ST       uint64
	UV       uint64
	XYZ2     uint64
	XYZ3     uint64
	XYZF2    uint64
	XYZF3    uint64
	Tex0     [2]uint64
	Tex1     [2]uint64
	Tex2     [2]uint64
	Clamp    [2]uint64
	Fog      uint64
	FogCol   uint64
	XYOffset [2]uint64
	PrmodeCont uint64
	Prmode   uint64
	Texclut  uint64
	Scanmsk  uint64
	Miptbp1  [2]uint64
	Miptbp2  [2]uint64
	Texa     uint64
	Texflush uint64
	Scissor  [2]uint64
	Alpha    [2]uint64
	Dimx     uint64
	Dthe     uint64
	Colclamp uint64
	Test     [2]uint64
	Pabe     uint64
	FBA      [2]uint64
	Frame    [2]uint64
	Zbuf     [2]uint64

	BitBltBuf bitbltbuf
	TrxPos    trxpos
	TrxReg    trxreg
	TrxDir    uint64

	VRAM        [NumPages]Page
	dataWritten uint32
}

// New returns a freshly reset GS.
func New() *GS {
	return &GS{TrxDir: TRXNone}
}

// ReadPriv reads a privileged register the EE addresses directly. Only
// CSR and SIGLBLID are readable on real hardware.
func (g *GS) ReadPriv(addr uint32) uint64 {
	switch addr {
	case 0x1000:
		return g.Priv.CSR
	case 0x1080:
		return g.Priv.Siglblid
	default:
		return 0
	}
}

// WritePriv writes a privileged register the EE addresses directly.
func (g *GS) WritePriv(addr uint32, data uint64) {
	switch addr {
	case 0x0000:
		g.Priv.Pmode = data
	case 0x0010:
		g.Priv.Smode1 = data
	case 0x0020:
		g.Priv.Smode2 = data
	case 0x0030:
		g.Priv.Srfsh = data
	case 0x0040:
		g.Priv.Synch1 = data
	case 0x0050:
		g.Priv.Synch2 = data
	case 0x0060:
		g.Priv.Syncv = data
	case 0x0070:
		g.Priv.Dispfb1 = data
	case 0x0080:
		g.Priv.Display1 = data
	case 0x0090:
		g.Priv.Dispfb2 = data
	case 0x00A0:
		g.Priv.Display2 = data
	case 0x00B0:
		g.Priv.Extbuf = data
	case 0x00C0:
		g.Priv.Extdata = data
	case 0x00D0:
		g.Priv.Extwrite = data
	case 0x00E0:
		g.Priv.Bgcolor = data
	case 0x1000:
		g.Priv.CSR = data
		if data&0x8 != 0 {
			g.Priv.CSR &^= 0x8
		}
	case 0x1010:
		g.Priv.IMR = data
	case 0x1040:
		g.Priv.Busdir = data
	case 0x1080:
		g.Priv.Siglblid = data
	}
}

// WriteReg implements gif.GSSink: a GS register write as decoded by the
// GIF's A+D / PACKED descriptor unpacking, keyed by the GS register index
// (not a byte address).
func (g *GS) WriteReg(addr uint32, data uint64) {
	context := addr & 1
	switch addr {
	case 0x00:
		g.Prim = data
	case 0x01:
		g.RGBAQ = data
	case 0x02:
		g.ST = data
	case 0x03:
		g.UV = data
	case 0x04:
		g.XYZF2 = data
	case 0x05:
		g.XYZ2 = data
	case 0x06, 0x07:
		g.Tex0[context] = data
	case 0x08, 0x09:
		g.Clamp[context] = data
	case 0x0A:
		g.Fog = data
	case 0x0C:
		g.XYZF3 = data
	case 0x0D:
		g.XYZ3 = data
	case 0x14, 0x15:
		g.Tex1[context] = data
	case 0x16, 0x17:
		g.Tex2[context] = data
	case 0x18, 0x19:
		g.XYOffset[context] = data
	case 0x1A:
		g.PrmodeCont = data
	case 0x1B:
		g.Prmode = data
	case 0x1C:
		g.Texclut = data
	case 0x22:
		g.Scanmsk = data
	case 0x34, 0x35:
		g.Miptbp1[context] = data
	case 0x36, 0x37:
		g.Miptbp2[context] = data
	case 0x3B:
		g.Texa = data
	case 0x3D:
		g.FogCol = data
	case 0x3F:
		g.Texflush = data
	case 0x40, 0x41:
		g.Scissor[context] = data
	case 0x42, 0x43:
		g.Alpha[context] = data
	case 0x44:
		g.Dimx = data
	case 0x45:
		g.Dthe = data
	case 0x46:
		g.Colclamp = data
	case 0x47, 0x48:
		g.Test[context] = data
	case 0x49:
		g.Pabe = data
	case 0x4A, 0x4B:
		g.FBA[context] = data
	case 0x4C, 0x4D:
		g.Frame[context] = data
	case 0x4E, 0x4F:
		g.Zbuf[context] = data
	case 0x50:
		g.BitBltBuf = bitbltbuf(data)
	case 0x51:
		g.TrxPos = trxpos(data)
	case 0x52:
		g.TrxReg = trxreg(data)
	case 0x53:
		g.TrxDir = data
		g.dataWritten = 0
	}
}

// WriteHWReg implements gif.GSSink: a raw 64 bit HWREG write, two per qword
// during a GIF IMAGE transfer targeting VRAM.
func (g *GS) WriteHWReg(data uint64) {
	if g.TrxDir != TRXHostLocal {
		return
	}

	widthInPages := g.BitBltBuf.DestWidth()
	widthInPixels := g.TrxReg.Width()
	if widthInPages == 0 || widthInPixels == 0 {
		return
	}

	switch g.BitBltBuf.DestFormat() {
	case 0x0: // PSMCT32
		for i := 0; i < 2; i++ {
			x, y := g.nextPixel(widthInPixels)
			page := g.BitBltBuf.DestBase()/BlocksPerPage + (uint32(x)/pagePixelWidthCT32)%widthInPages + (uint32(y)/pagePixelHeightCT32)*widthInPages
			if int(page) < len(g.VRAM) {
				pixel := uint32(data >> (32 * i))
				g.VRAM[page].WritePSMCT32(x, y, pixel)
			}
			g.dataWritten++
		}
	case 0x2: // PSMCT16
		for i := 0; i < 4; i++ {
			x, y := g.nextPixel(widthInPixels)
			page := g.BitBltBuf.DestBase()/BlocksPerPage + (uint32(x)/64)%widthInPages + (uint32(y)/64)*widthInPages
			if int(page) < len(g.VRAM) {
				pixel := uint16(data >> (16 * i))
				g.VRAM[page].WritePSMCT16(x, y, pixel)
			}
			g.dataWritten++
		}
	}

	if g.dataWritten >= g.TrxReg.Width()*g.TrxReg.Height() {
		g.dataWritten = 0
		g.TrxDir = TRXNone
	}
}

func (g *GS) nextPixel(widthInPixels uint32) (uint16, uint16) {
	x := uint16(g.dataWritten % widthInPixels)
	y := uint16(g.dataWritten / widthInPixels)
	x += g.TrxPos.DestX()
	y += g.TrxPos.DestY()
	return x, y
}
