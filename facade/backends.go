// File: facade/backends.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package facade

import "runtime"

var hostOS = runtime.GOOS
