package toolbox

//
//Copyright 2026 Fjordlab AS
//
//Licensed under the Apache License, Version 2.0 (the "License");
//you may not use this file except in compliance with the License.
//You may obtain a copy of the License at
//
//http://www.apache.org/licenses/LICENSE-2.0
//
//Unless required by applicable law or agreed to in writing, software
//distributed under the License is distributed on an "AS IS" BASIS,
//WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//See the License for the specific language governing permissions and
//limitations under the License.
//
import (
	"fmt"
	"strings"
)

const progressWidth = 80

// ConsoleProgress prints an 80-character progress bar on the console for
// values between [0, Max]. Set Max before the first Print.
type ConsoleProgress struct {
	Max     int
	Current int
}

// Print redraws the bar for the given value. The bar is only redrawn when the
// rendered width changes so tight loops won't drown the terminal in output.
func (c *ConsoleProgress) Print(val int) {
	if c.Max <= 0 {
		return
	}
	if val > c.Max {
		val = c.Max
	}
	cells := progressWidth - 2
	filled := val * cells / c.Max
	if filled == c.Current {
		return
	}
	c.Current = filled
	fmt.Printf("[%s%s]\r", strings.Repeat("=", filled), strings.Repeat(" ", cells-filled))
	if filled == cells {
		fmt.Println()
	}
}
