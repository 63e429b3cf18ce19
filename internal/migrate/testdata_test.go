package migrate_test

import (
	"io/fs"
	"os"
)

func testdataFS() fs.FS {
	return os.DirFS("../legacy/testdata")
}
