/*
Package main implements sdkgen, the code generator and build helper for the
AJA NTV2 SDK.

sdkgen keeps the per-device feature queries of libajantv2 in step with the
canonical enums. It reads ntv2enums.h and the canon function lists, cross-checks
every device definition file against them and emits ntv2devicefeatures.hh and
ntv2devicefeatures.hpp. The same binary also drives the documentation build and
a few smaller SDK chores.

# Commands

Generators:
  - generate: device features from ntv2enums.h, the canon lists and dev_*.gen files
  - features: device features from the CSV feature tables
  - canconnect: crosspoint routes from FPGA Verilog, written to ntv2canconnect.hpp

Build helpers:
  - docs: unpack the platform SDKs, run doxygen, zip and rsync the HTML
  - qtdeploy: copy the Qt runtime a binary needs into an install tree

# Device Files

Each ajantv2/sdkgen/devices/dev_<name>.gen file lists what one device
supports, one symbol per line. GetNum functions carry a value:

	NTV2_FORMAT_1080i_5000
	NTV2_FBF_10BIT_YCBCR
	NTV2DeviceCanDo3GOut
	NTV2DeviceGetNumVideoInputs 4

Every canonical device must have a file and every symbol must be canonical.
Output is rendered in memory and written only when all checks pass.

# Configuration

Settings come from sdkgen.yaml (or --config) with SDKGEN_* environment
overrides:

	generate:
	  copyright_holder: "AJA Video Systems, Inc."
	docs:
	  dest: "sdkdocs@sdksupport.aja.com:/docs/"
	  timeout: "30m"
	canconnect:
	  devices:
	    kona5: {id: DEVICE_ID_KONA5, verilog: "KONA5/source/vp/xpt_kona_5.v"}

The documentation steps are a pipeline plan. The built-in plan is embedded;
--pipeline runs a TOML or YAML plan of the same shape instead.

# Exit Status

Failures exit with the status the SDK build scripts have always used: 404 for
a missing input, 503 for a syntax error or duplicate, 605 for an unrecognized
symbol, 610 and 611 for device coverage errors, 602 and 603 for warnings
escalated by --failwarnings. Usage errors and failed external commands exit 1.

# Usage Examples

Regenerate the device features:

	sdkgen generate --ajantv2 libajantv2/ajantv2 --unused

Fail the build on any warning:

	sdkgen -f generate --ajantv2 libajantv2/ajantv2

Build the docs without running doxygen:

	sdkgen docs --version 17.1.0 --nocompile

# Dependencies

  - github.com/agilira/orpheus: CLI framework
  - github.com/phuslu/log: structured logging
  - gopkg.in/yaml.v3 and github.com/pelletier/go-toml/v2: configuration and pipeline plans
  - github.com/go-playground/validator/v10: configuration and plan validation
*/
package main
