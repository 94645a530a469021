/***
    Copyright (c) 2016, Hector Sanjuan

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Lesser General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU Lesser General Public License for more details.

    You should have received a copy of the GNU Lesser General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
***/

// Command nfctype4-tool reads the NDEF content of a Type 4 tag and
// prints its records.
//
// The "read" subcommand drives a real libnfc-supported reader. The
// "sim" subcommand drives an in-process static tag instead, so the
// init dialogue and NDEF parsing can be exercised without hardware.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/nfc-tools/nfctype4core/drivers/libnfc"
	"github.com/nfc-tools/nfctype4core/drivers/swtag"
	"github.com/nfc-tools/nfctype4core/ndefrec"
	"github.com/nfc-tools/nfctype4core/tag4"
	"github.com/nfc-tools/nfctype4core/tags/static"
)

var deviceIndex int

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: nfctype4-tool [options] <read|sim>\n")
		fmt.Fprintf(os.Stderr, "Operations:\n")
		fmt.Fprintf(os.Stderr, " - read: read the NDEF content of a tag on a real reader.\n")
		fmt.Fprintf(os.Stderr, " - sim: read the NDEF content of an in-process simulated tag.\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintln(os.Stderr)
	}
	flag.IntVar(&deviceIndex, "device", 0, "libnfc device index to open (read only)")
	flag.Parse()
}

func main() {
	switch flag.Arg(0) {
	case "read":
		doRead()
	case "sim":
		doSim()
	case "":
		fmt.Fprintf(os.Stderr, "Command argument is missing.\n\n")
		flag.Usage()
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "Unrecognized command %s.\n\n", flag.Arg(0))
		flag.Usage()
		os.Exit(2)
	}
}

func doRead() {
	tgt, err := libnfc.Open(libnfc.WithDeviceIndex(deviceIndex))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	done := make(chan *tag4.Tag, 1)
	tag4.New(tgt, 256, tag4.IsoDepParams{}, func(t *tag4.Tag) { done <- t })

	select {
	case t := <-done:
		printRecords(t.NDEF)
	case <-time.After(5 * time.Second):
		fmt.Fprintln(os.Stderr, "timed out waiting for tag initialization")
		os.Exit(1)
	}
}

func doSim() {
	// A short placeholder message so "sim" has something to print
	// without any external input.
	body := []byte{0xD1, 0x01, 0x0C, 0x54, 0x02, 'e', 'n', 'h', 'e', 'l', 'l', 'o', ' ', 'n', 'f', 'c'}
	tgt := swtag.New(static.New(static.WithNDEFMessage(body)))

	t := tag4.New(tgt, 256, tag4.IsoDepParams{}, nil)
	printRecords(t.NDEF)
}

func printRecords(records []ndefrec.Record) {
	if len(records) == 0 {
		fmt.Println("(no NDEF records)")
		return
	}
	for i, r := range records {
		switch r.Kind {
		case ndefrec.KindText:
			fmt.Printf("%d: text[%s] %q\n", i, r.Lang, r.Text)
		case ndefrec.KindURI:
			fmt.Printf("%d: uri %s\n", i, r.URI)
		case ndefrec.KindSmartPoster:
			fmt.Printf("%d: smartposter -> %s\n", i, r.URI)
		default:
			fmt.Printf("%d: unknown record\n", i)
		}
	}
}
