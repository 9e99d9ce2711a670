/*
 * ps2emu - Graphics Synthesizer VRAM page addressing.
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

package gs

// VRAM geometry constants.
const (
	PageSize        = 8192
	BlocksPerPage   = 32
	BlockSize       = 256
	ColumnsPerBlock = 4
	ColumnSize      = 64
	NumPages        = 512

	pagePixelWidthCT32  = 64
	pagePixelHeightCT32 = 32
	blockPixelWidthCT32 = 8
	blockPixelHeightCT32 = 8
	pageBlockWidthCT32  = 8

	pagePixelWidthCT16  = 64
	blockPixelWidthCT16 = 16
	blockPixelHeightCT16 = 8
	pageBlockWidthCT16  = 4
)

// blockLayout32 is PSMCT32's non-linear block permutation, indexed
// [block_y][block_x].
var blockLayout32 = [4][8]int{
	{0, 1, 4, 5, 16, 17, 20, 21},
	{2, 3, 6, 7, 18, 19, 22, 23},
	{8, 9, 12, 13, 24, 25, 28, 29},
	{10, 11, 14, 15, 26, 27, 30, 31},
}

// blockLayout16 is PSMCT16's non-linear block permutation, indexed
// [block_y][block_x].
var blockLayout16 = [8][4]int{
	{0, 2, 8, 10},
	{1, 3, 9, 11},
	{4, 6, 12, 14},
	{5, 7, 13, 15},
	{16, 18, 24, 26},
	{17, 19, 25, 27},
	{20, 22, 28, 30},
	{21, 23, 29, 31},
}

// pixelOrder maps (y&1, x%8) to the non-linear pixel offset within a column
// pair, shared by both pixel formats.
var pixelOrder = [2][8]int{
	{0, 1, 4, 5, 8, 9, 12, 13},
	{2, 3, 6, 7, 10, 11, 14, 15},
}

// Page is one 8KiB VRAM page: 32 blocks of 256 bytes.
type Page struct {
	blocks [BlocksPerPage][BlockSize]byte
}

// WritePSMCT32 writes one 32 bit pixel at (x, y) within the page, per
// gsvram.cpp's block/column permutation tables.
func (p *Page) WritePSMCT32(x, y uint16, value uint32) {
	blockX := int(x/blockPixelWidthCT32) % pageBlockWidthCT32
	blockY := int(y/blockPixelHeightCT32) % 4
	block := blockLayout32[blockY][blockX] % BlocksPerPage
	column := int(y/2) % ColumnsPerBlock
	pixel := pixelOrder[y&1][x%8]
	offset := column*ColumnSize + pixel*4

	p.blocks[block][offset] = byte(value)
	p.blocks[block][offset+1] = byte(value >> 8)
	p.blocks[block][offset+2] = byte(value >> 16)
	p.blocks[block][offset+3] = byte(value >> 24)
}

// WritePSMCT16 writes one 16 bit pixel at (x, y) within the page.
func (p *Page) WritePSMCT16(x, y uint16, value uint16) {
	blockX := int(x/blockPixelWidthCT16) % pageBlockWidthCT16
	blockY := int(y/blockPixelHeightCT16) % 8
	block := blockLayout16[blockY][blockX] % BlocksPerPage
	column := int(y/2) % ColumnsPerBlock
	pixel := pixelOrder[y&1][(x>>1)%8]
	offset := column*ColumnSize + pixel*2

	p.blocks[block][offset] = byte(value)
	p.blocks[block][offset+1] = byte(value >> 8)
}
