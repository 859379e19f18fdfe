package evaldict_test

import (
	"errors"
	"fmt"

	"github.com/lwmacct/251207-go-pkg-evaldict/pkg/evaldict"
)

// Example_nestedFormatSpec 演示 format_spec 中嵌套引用其他条目。
func Example_nestedFormatSpec() {
	d := evaldict.New()
	d.Set("fill", " ")
	d.Set("align", ">")
	d.Set("pad", "20")
	d.Set("message", "Hello World!")
	d.Set("val", "{message:{fill}{align}{pad}}")

	val, _ := d.Get("val")
	fmt.Printf("%q\n", val)

	// Output:
	// "        Hello World!"
}

// Example_invalidation 演示修改依赖后不会返回过期值。
func Example_invalidation() {
	d := evaldict.New()
	d.Set("x", "{y}")
	d.Set("y", "1")

	before, _ := d.Get("x")
	d.Set("y", "2")
	after, _ := d.Get("x")
	fmt.Println(before, after)

	// Output:
	// 1 2
}

// Example_cyclicDependency 演示循环引用的检测。
func Example_cyclicDependency() {
	d := evaldict.New()
	d.Set("a", "{b}")
	d.Set("b", "{a}")

	_, err := d.Get("a")
	fmt.Println(errors.Is(err, evaldict.ErrCyclicDependency))

	// Output:
	// true
}

// Example_plainValues 演示非模板值按 format_spec 渲染。
func Example_plainValues() {
	d := evaldict.New()
	d.Set("ratio", 0.875)
	d.Set("count", 1234567)
	d.Set("report", "{count:,} items, {ratio:.1%} done")

	report, _ := d.Get("report")
	fmt.Println(report)

	// Output:
	// 1,234,567 items, 87.5% done
}
