package core

import "os"

// EnterDir changes the process working directory to dir and returns a
// function that restores the previous one.
//
// Callers must run the restore function on every exit path, including
// aborts partway through a build, so the working directory never leaks
// to the rest of the process.
func EnterDir(dir string) (restore func() error, err error) {
	previous, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	if err := os.Chdir(dir); err != nil {
		return nil, err
	}

	return func() error {
		return os.Chdir(previous)
	}, nil
}
