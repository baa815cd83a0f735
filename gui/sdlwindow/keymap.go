// This file is part of GopherBeeb.
//
// GopherBeeb is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GopherBeeb is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GopherBeeb.  If not, see <https://www.gnu.org/licenses/>.

package sdlwindow

import (
	"github.com/veandco/go-sdl2/sdl"
)

type matrixPos struct {
	row int
	col int
}

// the BBC key matrix positions, row by column, as the system VIA scans
// them. row 0 carries the modifier keys; the rest follow the Advanced
// User Guide matrix.
var keymap = map[sdl.Scancode]matrixPos{
	sdl.SCANCODE_LSHIFT: {0, 0},
	sdl.SCANCODE_RSHIFT: {0, 0},
	sdl.SCANCODE_LCTRL:  {0, 1},
	sdl.SCANCODE_RCTRL:  {0, 1},

	sdl.SCANCODE_Q:     {1, 0},
	sdl.SCANCODE_3:     {1, 1},
	sdl.SCANCODE_4:     {1, 2},
	sdl.SCANCODE_5:     {1, 3},
	sdl.SCANCODE_F4:    {1, 4},
	sdl.SCANCODE_8:     {1, 5},
	sdl.SCANCODE_F7:    {1, 6},
	sdl.SCANCODE_MINUS: {1, 7},
	sdl.SCANCODE_LEFT:  {1, 9},

	sdl.SCANCODE_F10:  {2, 0}, // f0
	sdl.SCANCODE_W:    {2, 1},
	sdl.SCANCODE_E:    {2, 2},
	sdl.SCANCODE_T:    {2, 3},
	sdl.SCANCODE_7:    {2, 4},
	sdl.SCANCODE_I:    {2, 5},
	sdl.SCANCODE_9:    {2, 6},
	sdl.SCANCODE_0:    {2, 7},
	sdl.SCANCODE_DOWN: {2, 9},

	sdl.SCANCODE_1:           {3, 0},
	sdl.SCANCODE_2:           {3, 1},
	sdl.SCANCODE_D:           {3, 2},
	sdl.SCANCODE_R:           {3, 3},
	sdl.SCANCODE_6:           {3, 4},
	sdl.SCANCODE_U:           {3, 5},
	sdl.SCANCODE_O:           {3, 6},
	sdl.SCANCODE_P:           {3, 7},
	sdl.SCANCODE_LEFTBRACKET: {3, 8},
	sdl.SCANCODE_UP:          {3, 9},

	sdl.SCANCODE_CAPSLOCK:   {4, 0},
	sdl.SCANCODE_A:          {4, 1},
	sdl.SCANCODE_X:          {4, 2},
	sdl.SCANCODE_F:          {4, 3},
	sdl.SCANCODE_Y:          {4, 4},
	sdl.SCANCODE_J:          {4, 5},
	sdl.SCANCODE_K:          {4, 6},
	sdl.SCANCODE_APOSTROPHE: {4, 7}, // @
	sdl.SCANCODE_SEMICOLON:  {4, 8}, // :
	sdl.SCANCODE_RETURN:     {4, 9},

	sdl.SCANCODE_S:            {5, 1},
	sdl.SCANCODE_C:            {5, 2},
	sdl.SCANCODE_G:            {5, 3},
	sdl.SCANCODE_H:            {5, 4},
	sdl.SCANCODE_N:            {5, 5},
	sdl.SCANCODE_L:            {5, 6},
	sdl.SCANCODE_RIGHTBRACKET: {5, 8},
	sdl.SCANCODE_BACKSPACE:    {5, 9}, // DELETE

	sdl.SCANCODE_TAB:    {6, 0},
	sdl.SCANCODE_Z:      {6, 1},
	sdl.SCANCODE_SPACE:  {6, 2},
	sdl.SCANCODE_V:      {6, 3},
	sdl.SCANCODE_B:      {6, 4},
	sdl.SCANCODE_M:      {6, 5},
	sdl.SCANCODE_COMMA:  {6, 6},
	sdl.SCANCODE_PERIOD: {6, 7},
	sdl.SCANCODE_SLASH:  {6, 8},
	sdl.SCANCODE_END:    {6, 9}, // COPY

	sdl.SCANCODE_ESCAPE:    {7, 0},
	sdl.SCANCODE_F1:        {7, 1},
	sdl.SCANCODE_F2:        {7, 2},
	sdl.SCANCODE_F3:        {7, 3},
	sdl.SCANCODE_F5:        {7, 4},
	sdl.SCANCODE_F6:        {7, 5},
	sdl.SCANCODE_F8:        {7, 6},
	sdl.SCANCODE_F9:        {7, 7},
	sdl.SCANCODE_BACKSLASH: {7, 8},
	sdl.SCANCODE_RIGHT:     {7, 9},
}

func matrixPosition(sc sdl.Scancode) (int, int, bool) {
	p, ok := keymap[sc]
	return p.row, p.col, ok
}
