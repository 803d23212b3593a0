package vm

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// helpText is rendered verbatim by !help; it mirrors the command table
// from the architecture spec so an operator never has to leave the
// console to remember a command's name.
const helpText = `!help              list commands
!history           persist command history to a file
!halt, !kill       mark the VM to stop
!dump [path]       serialize the current memory image to a file
!pos               print the current PC
!getreg            print register contents
!getstack          print stack contents
!setreg i v        overwrite reg[i] with v
!poke i v1 v2 ...  overwrite mem[i], mem[i+1], ... with the listed cells
!peek i [n]        print n cells starting at i (default n=1)
`

// Console wires a VM to a terminal: it owns the VM instance and the
// "!"-prefixed control channel multiplexed onto the program's input
// stream. The control channel operates through a borrowed reference to
// that single VM instance rather than any package-level state.
type Console struct {
	VM            *VM
	Writer        io.Writer
	historyPath   string
	haltRequested bool
	lineInput     *LineInput
}

// NewConsole builds a console around img, wiring stdout as the
// program's character output and a liner-backed ByteSource as its
// input, with control-channel history persisted at historyPath (pass
// "" to disable loading prior history).
func NewConsole(img *Image, historyPath string) *Console {
	c := &Console{Writer: os.Stdout, historyPath: historyPath}
	v := New(img)
	v.Out = os.Stdout
	c.VM = v
	c.lineInput = NewLineInput(c, historyPath)
	v.In = c.lineInput
	return c
}

// Close releases the console's line-editing state.
func (c *Console) Close() error {
	return c.lineInput.Close()
}

// Run drives the VM to completion, servicing the control channel at
// every input boundary along the way.
func (c *Console) Run() Outcome {
	defer c.Close()
	return c.VM.Run()
}

func (c *Console) handleControl(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	cmd, args := fields[0], fields[1:]
	var err error
	switch cmd {
	case "!help":
		fmt.Fprint(c.Writer, helpText)
	case "!history":
		err = c.persistHistory()
	case "!halt", "!kill":
		c.haltRequested = true
	case "!dump":
		err = c.dumpImage(args)
	case "!pos":
		fmt.Fprintf(c.Writer, "pc=%04x\n", c.VM.PC)
	case "!getreg":
		c.printRegisters()
	case "!getstack":
		c.printStack()
	case "!setreg":
		err = c.setReg(args)
	case "!poke":
		err = c.poke(args)
	case "!peek":
		err = c.peek(args)
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		c.report(line, err)
	}
}

// report surfaces a malformed control command to the operator. Per the
// spec's error policy this is never fatal: the console keeps running.
func (c *Console) report(line string, err error) {
	fmt.Fprintln(c.Writer, (&ErrControlCommand{Line: line, Err: err}).Error())
}

func parseHex(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("%q is not a hexadecimal integer", s)
	}
	return uint16(v), nil
}

func (c *Console) persistHistory() error {
	path := c.historyPath
	if path == "" {
		path = "history.txt"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = c.lineInput.state.WriteHistory(f)
	return err
}

func (c *Console) dumpImage(args []string) error {
	path := "dump.bin"
	if len(args) > 0 {
		path = args[0]
	}
	return c.VM.Image.DumpFile(path)
}

func (c *Console) printRegisters() {
	table := tablewriter.NewWriter(c.Writer)
	table.SetHeader([]string{"register", "value"})
	for i, v := range c.VM.Reg {
		table.Append([]string{fmt.Sprintf("r%d", i), fmt.Sprintf("%04x", v)})
	}
	table.Render()
}

func (c *Console) printStack() {
	table := tablewriter.NewWriter(c.Writer)
	table.SetHeader([]string{"depth", "value"})
	for i := len(c.VM.Stack) - 1; i >= 0; i-- {
		table.Append([]string{fmt.Sprintf("%d", len(c.VM.Stack)-1-i), fmt.Sprintf("%04x", c.VM.Stack[i])})
	}
	table.Render()
}

func (c *Console) setReg(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: !setreg i v")
	}
	i, err := parseHex(args[0])
	if err != nil {
		return err
	}
	v, err := parseHex(args[1])
	if err != nil {
		return err
	}
	if int(i) >= NumRegisters {
		return fmt.Errorf("register %d out of range", i)
	}
	c.VM.Reg[i] = v
	return nil
}

func (c *Console) poke(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: !poke i v1 v2 ...")
	}
	addr, err := parseHex(args[0])
	if err != nil {
		return err
	}
	for _, s := range args[1:] {
		v, err := parseHex(s)
		if err != nil {
			return err
		}
		if int(addr) >= MemorySize {
			return fmt.Errorf("address %04x out of range", addr)
		}
		c.VM.Image.Cells[addr] = v
		addr++
	}
	return nil
}

func (c *Console) peek(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: !peek i [n]")
	}
	addr, err := parseHex(args[0])
	if err != nil {
		return err
	}
	n := uint16(1)
	if len(args) > 1 {
		n, err = parseHex(args[1])
		if err != nil {
			return err
		}
	}
	table := tablewriter.NewWriter(c.Writer)
	table.SetHeader([]string{"address", "value"})
	for i := uint16(0); i < n; i++ {
		a := addr + i
		if int(a) >= MemorySize {
			break
		}
		table.Append([]string{fmt.Sprintf("%04x", a), fmt.Sprintf("%04x", c.VM.Image.Cells[a])})
	}
	table.Render()
	return nil
}
