// Command mitabtool converts GeoJSON and FlatGeobuf layers to and from
// MapInfo map objects.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Error("mitabtool failed")
		os.Exit(1)
	}
}
